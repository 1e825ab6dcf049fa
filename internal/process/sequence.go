package process

import (
	"context"
	"fmt"

	"github.com/shaiso/pairalign/internal/domain"
)

// Hook получает уведомления о ходе последовательности вызовов.
type Hook interface {
	Started(inv *domain.Invocation)
	Finished(inv *domain.Invocation, err error)
}

// NopHook ничего не делает.
type NopHook struct{}

func (NopHook) Started(*domain.Invocation)         {}
func (NopHook) Finished(*domain.Invocation, error) {}

// RunSequence выполняет вызовы строго по порядку и останавливается
// на первой ошибке. Статусы и время выполнения записываются в invs.
//
// Порядок важен: первый вызов прохода создаёт SAM с заголовком,
// следующие дописывают в него без заголовка.
func RunSequence(ctx context.Context, runner Runner, invs []domain.Invocation, hook Hook) error {
	if hook == nil {
		hook = NopHook{}
	}

	for i := range invs {
		inv := &invs[i]

		if err := ctx.Err(); err != nil {
			return err
		}

		inv.MarkStarted()
		hook.Started(inv)

		if err := runner.Run(ctx, inv); err != nil {
			inv.MarkFailed(err.Error())
			hook.Finished(inv, err)
			return fmt.Errorf("%s lane %d: %w", inv.Pass, inv.Lane, err)
		}

		inv.MarkSucceeded()
		hook.Finished(inv, nil)
	}

	return nil
}
