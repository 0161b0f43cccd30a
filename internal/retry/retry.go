package retry

import (
	"context"
	"time"
)

// Policy describe un reintento acotado con espera fija entre intentos.
// Sleep es inyectable para que los tests no duerman de verdad.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(context.Context, time.Duration) error
}

// Default reproduce el bucle del registro de push: 3 intentos con 2s fijos.
func Default() Policy {
	return Policy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Do ejecuta fn hasta MaxAttempts veces, cortando en el primer éxito.
// Entre intentos respeta la cancelación del contexto. Devuelve el último error.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if i < attempts-1 && p.Delay > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
