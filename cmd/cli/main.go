package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"whogowin-client/internal/api"
	"whogowin-client/internal/config"
	"whogowin-client/internal/domain"
	"whogowin-client/internal/push"
	"whogowin-client/internal/service"
	"whogowin-client/internal/session"
	"whogowin-client/internal/storage"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	store, err := storage.NewFileStore(cfg.StorageDir)
	if err != nil {
		log.Fatal(err)
	}

	sessions := session.NewStore(session.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
		Storage: store,
		Logger:  logger,
	})
	device := push.NewLocalDevice(store, cfg.PhysicalDevice, cfg.PushToken)
	registrar := push.NewRegistrar(sessions.Client(), device, sessions.Token, cfg.PushProjectID, logger)
	sessions.SetPushRegistrar(registrar)

	draws := service.NewDrawService(sessions.Client())
	tickets := service.NewTicketService(logger, sessions.Client())
	wallet := service.NewWalletService(logger, sessions.Client())
	notifications := service.NewNotificationService(logger, sessions.Client())
	profile := service.NewProfileService(logger, sessions.Client())

	showOnboarding(reader, store)

	fmt.Println("Restaurando sesión...")
	sessions.Restore(ctx)

	for {
		if sessions.State() != session.StateAuthenticated {
			if !authMenu(ctx, reader, sessions) {
				return
			}
			continue
		}
		if !mainMenu(ctx, reader, sessions, draws, tickets, wallet, notifications, profile) {
			return
		}
	}
}

// showOnboarding muestra la introducción solo la primera vez.
func showOnboarding(reader *bufio.Reader, store storage.KeyValue) {
	if _, err := store.Get(storage.KeyHasOnboarded); err == nil {
		return
	}
	fmt.Println("===== WhoGoWin =====")
	fmt.Println("Compra tickets, entra a los sorteos diarios y semanales,")
	fmt.Println("y cobra el pozo directo a tu billetera.")
	fmt.Print("Presiona Enter para continuar: ")
	_, _ = reader.ReadString('\n')
	_ = store.Set(storage.KeyHasOnboarded, "true")
}

// authMenu corre hasta autenticar. Devuelve false para salir del programa.
func authMenu(ctx context.Context, reader *bufio.Reader, sessions *session.Store) bool {
	for {
		fmt.Println("\n===== Acceso =====")
		fmt.Println("[1] Iniciar sesión")
		fmt.Println("[2] Crear cuenta")
		fmt.Println("[3] Olvidé mi contraseña")
		fmt.Println("[4] Salir")
		fmt.Print("Selecciona una opción: ")

		switch readLine(reader) {
		case "1":
			if loginFlow(ctx, reader, sessions) {
				return true
			}
		case "2":
			if registerFlow(ctx, reader, sessions) {
				return true
			}
		case "3":
			fmt.Print("Email: ")
			email := readLine(reader)
			fmt.Println(sessions.ForgotPassword(ctx, email))
		case "4":
			return false
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

func loginFlow(ctx context.Context, reader *bufio.Reader, sessions *session.Store) bool {
	fmt.Print("Email: ")
	email := readLine(reader)
	fmt.Print("Contraseña: ")
	password := readLine(reader)

	if err := sessions.Login(ctx, email, password); err != nil {
		alert("Login Failed", err.Error())
		return false
	}
	if u := sessions.Current(); u != nil {
		fmt.Printf("Bienvenido, %s!\n", u.Name)
	}
	return true
}

func registerFlow(ctx context.Context, reader *bufio.Reader, sessions *session.Store) bool {
	fmt.Print("Nombre: ")
	name := readLine(reader)
	fmt.Print("Email: ")
	email := readLine(reader)
	fmt.Print("Contraseña: ")
	password := readLine(reader)

	if err := sessions.Register(ctx, name, email, password); err != nil {
		alert("Registration Failed", err.Error())
		return false
	}
	if u := sessions.Current(); u != nil {
		fmt.Printf("Cuenta creada. Bienvenido, %s!\n", u.Name)
	}
	return true
}

func mainMenu(
	ctx context.Context,
	reader *bufio.Reader,
	sessions *session.Store,
	draws *service.DrawService,
	tickets *service.TicketService,
	wallet *service.WalletService,
	notifications *service.NotificationService,
	profile *service.ProfileService,
) bool {
	for {
		fmt.Println("\n===== WhoGoWin =====")
		fmt.Println("[1] Sorteos activos")
		fmt.Println("[2] Mis tickets")
		fmt.Println("[3] Resultados")
		fmt.Println("[4] Billetera")
		fmt.Println("[5] Perfil")
		fmt.Println("[6] Notificaciones")
		fmt.Println("[7] Cerrar sesión")
		fmt.Println("[8] Salir")
		fmt.Print("Selecciona una opción: ")

		switch readLine(reader) {
		case "1":
			drawsFlow(ctx, reader, draws, tickets, wallet)
		case "2":
			ticketsFlow(ctx, tickets)
		case "3":
			resultsFlow(ctx, draws)
		case "4":
			walletFlow(ctx, reader, wallet)
		case "5":
			profileFlow(ctx, reader, profile)
		case "6":
			notificationsFlow(ctx, reader, notifications)
		case "7":
			sessions.Logout()
			fmt.Println("Sesión cerrada.")
			return true
		case "8":
			return false
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

func drawsFlow(ctx context.Context, reader *bufio.Reader, draws *service.DrawService, tickets *service.TicketService, wallet *service.WalletService) {
	active, err := draws.Active(ctx)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to fetch active draws"))
		return
	}
	balance, err := wallet.Balance(ctx)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to fetch wallet balance"))
		return
	}

	fmt.Printf("\nSaldo: ₦%.2f\n", balance)
	if len(active) == 0 {
		fmt.Println("No hay sorteos activos ahora mismo.")
		return
	}
	for i, d := range active {
		fmt.Printf("[%d] %s Draw | pozo ₦%.2f | cierra %s\n", i+1, d.DrawType, d.TotalPot, formatRemaining(d.EndTime))
	}
	fmt.Print("Selecciona un sorteo para comprar ticket (Enter para volver): ")
	choice := readLine(reader)
	if choice == "" {
		return
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(active) {
		fmt.Println("Selección inválida.")
		return
	}
	buyTicketFlow(ctx, reader, draws, tickets, balance, active[idx-1].ID)
}

func buyTicketFlow(ctx context.Context, reader *bufio.Reader, draws *service.DrawService, tickets *service.TicketService, balance float64, drawID string) {
	draw, err := draws.ByID(ctx, drawID)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to fetch draw details"))
		return
	}
	fmt.Printf("%s Draw | pozo ₦%.2f | cierra %s\n", draw.DrawType, draw.TotalPot, formatRemaining(draw.EndTime))

	fmt.Print("Precio del ticket (100/200/500/1000): ")
	price, err := strconv.ParseFloat(readLine(reader), 64)
	if err != nil || price <= 0 {
		fmt.Println("Monto inválido.")
		return
	}
	if price > balance {
		alert("Error", "Insufficient balance")
		return
	}

	ticket, err := tickets.Buy(ctx, drawID, price)
	if err != nil {
		alert("Purchase Failed", api.Reason(err, "Failed to purchase ticket"))
		return
	}
	fmt.Printf("Ticket %s comprado. ¡Suerte!\n", ticket.ID)
}

func ticketsFlow(ctx context.Context, tickets *service.TicketService) {
	mine, err := tickets.Mine(ctx)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to fetch tickets"))
		return
	}
	if len(mine) == 0 {
		fmt.Println("Todavía no tienes tickets.")
		return
	}
	for _, t := range mine {
		status := t.Status
		if t.IsWinner {
			status = "winner"
		}
		fmt.Printf("- %s Draw | ₦%.0f | %s | %s\n", t.DrawType, t.TicketPrice, t.PurchaseDate.Format("2006-01-02"), status)
	}
}

func resultsFlow(ctx context.Context, draws *service.DrawService) {
	results, err := draws.Completed(ctx)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to fetch results"))
		return
	}
	if len(results) == 0 {
		fmt.Println("Sin resultados todavía.")
		return
	}
	for _, r := range results {
		fmt.Printf("\n%s Draw | %s | pozo ₦%.2f\n", r.DrawType, r.EndTime.Format("2006-01-02"), r.TotalPot)
		if r.FirstPlaceWinner != nil {
			fmt.Printf("  1er lugar: %s (₦%.2f)\n", r.FirstPlaceWinner.Name, r.FirstPlaceWinner.PrizeAmount)
		}
		for _, w := range r.ConsolationWinners {
			fmt.Printf("  Consolación: %s (₦%.2f)\n", w.Name, w.PrizeAmount)
		}
	}
}

func walletFlow(ctx context.Context, reader *bufio.Reader, wallet *service.WalletService) {
	details, err := wallet.Details(ctx)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to fetch wallet"))
		return
	}
	fmt.Printf("\nSaldo: ₦%.2f\n", details.Balance)
	for _, tx := range details.Transactions {
		sign := "+"
		if tx.Type == "debit" {
			sign = "-"
		}
		fmt.Printf("  %s₦%.2f  %s (%s)\n", sign, tx.Amount, tx.Description, tx.Status)
	}

	fmt.Println("[1] Recargar")
	fmt.Println("[2] Verificar pago")
	fmt.Println("[3] Retirar")
	fmt.Print("Selecciona una opción (Enter para volver): ")
	switch readLine(reader) {
	case "1":
		topUpFlow(ctx, reader, wallet)
	case "2":
		fmt.Print("Referencia de pago: ")
		ref := readLine(reader)
		v, err := wallet.VerifyPayment(ctx, ref)
		if err != nil {
			alert("Error", api.Reason(err, "Failed to verify payment"))
			return
		}
		fmt.Printf("%s | ₦%.2f acreditados | saldo nuevo ₦%.2f\n", v.Message, v.Amount, v.NewBalance)
	case "3":
		withdrawFlow(ctx, reader, wallet, details.Balance)
	}
}

func topUpFlow(ctx context.Context, reader *bufio.Reader, wallet *service.WalletService) {
	fmt.Print("Monto a recargar: ")
	amount, err := strconv.ParseFloat(readLine(reader), 64)
	if err != nil || amount <= 0 {
		alert("Error", "Please enter a valid amount")
		return
	}
	topup, err := wallet.TopUp(ctx, amount)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to top up wallet"))
		return
	}
	fmt.Printf("Completa el pago en: %s\n", topup.AuthorizationURL)
	fmt.Printf("Referencia: %s (usa [2] Verificar pago al terminar)\n", topup.Reference)
}

func withdrawFlow(ctx context.Context, reader *bufio.Reader, wallet *service.WalletService, balance float64) {
	fmt.Print("Monto a retirar: ")
	amount, err := strconv.ParseFloat(readLine(reader), 64)
	if err != nil || amount <= 0 {
		alert("Error", "Please enter a valid amount")
		return
	}
	if amount > balance {
		alert("Error", "Insufficient balance")
		return
	}
	fmt.Print("Titular de la cuenta: ")
	accountName := readLine(reader)
	fmt.Print("Banco: ")
	bankName := readLine(reader)
	fmt.Print("Número de cuenta: ")
	accountNumber := readLine(reader)

	in := service.WithdrawInput{
		Amount:        amount,
		AccountName:   accountName,
		BankName:      bankName,
		AccountNumber: accountNumber,
	}
	if err := wallet.Withdraw(ctx, in); err != nil {
		alert("Error", api.Reason(err, "Failed to process withdrawal"))
		return
	}
	fmt.Println("Retiro solicitado correctamente.")
}

func profileFlow(ctx context.Context, reader *bufio.Reader, profile *service.ProfileService) {
	me, err := profile.Me(ctx)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to fetch profile"))
		return
	}
	printUser(me)

	fmt.Print("Nuevo nombre (Enter para dejar igual): ")
	name := readLine(reader)
	if name == "" {
		return
	}
	updated, err := profile.UpdateName(ctx, name)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to update profile"))
		return
	}
	fmt.Println("Perfil actualizado.")
	printUser(updated)
}

func printUser(u *domain.User) {
	fmt.Printf("\n%s <%s>\n", u.Name, u.Email)
	if u.ReferralCode != "" {
		fmt.Printf("Código de referido: %s\n", u.ReferralCode)
	}
}

func notificationsFlow(ctx context.Context, reader *bufio.Reader, notifications *service.NotificationService) {
	history, err := notifications.History(ctx)
	if err != nil {
		alert("Error", api.Reason(err, "Failed to fetch notifications"))
		return
	}
	var unread []string
	if len(history) == 0 {
		fmt.Println("Sin notificaciones.")
	}
	for _, n := range history {
		mark := " "
		if !n.Read {
			mark = "*"
			unread = append(unread, n.ID)
		}
		fmt.Printf("[%s] %s — %s\n", mark, n.Title, n.Message)
	}

	if len(unread) > 0 {
		fmt.Println("[1] Marcar todas como leídas")
	}
	fmt.Println("[2] Enviar notificación de prueba")
	fmt.Print("Selecciona una opción (Enter para volver): ")
	switch readLine(reader) {
	case "1":
		if len(unread) == 0 {
			return
		}
		if err := notifications.MarkRead(ctx, unread); err != nil {
			alert("Error", api.Reason(err, "Failed to mark notifications read"))
			return
		}
		fmt.Println("Notificaciones marcadas como leídas.")
	case "2":
		if err := notifications.SendTest(ctx); err != nil {
			alert("Error", api.Reason(err, "Failed to send test notification"))
			return
		}
		fmt.Println("Notificación de prueba solicitada.")
	}
}

// alert imprime el fallo de una acción como un único aviso: título y motivo.
func alert(title, message string) {
	fmt.Printf("\n[%s] %s\n", title, message)
}

func formatRemaining(end time.Time) string {
	d := time.Until(end)
	if d <= 0 {
		return "cerrado"
	}
	if d >= 24*time.Hour {
		return fmt.Sprintf("en %dd %dh", int(d.Hours())/24, int(d.Hours())%24)
	}
	return fmt.Sprintf("en %dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
