package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/pairalign/internal/mq"
)

// NewWatchCmd создаёт команду подписки на события run.
func NewWatchCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print run events from the event bus until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := outputFn()

			if env.Config.AMQPURL == "" {
				return errors.New("event bus is not configured, set amqp_url")
			}

			conn, err := mq.NewConnection(env.Config.AMQPURL, env.Logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := mq.SetupTopology(cmd.Context(), conn); err != nil {
				return err
			}
			env.Logger.Debug("event bus topology", "info", mq.TopologyInfo())

			err = mq.Watch(cmd.Context(), conn, env.Logger, func(_ context.Context, msg *mq.Message) error {
				return printEvent(out, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func printEvent(out *Output, msg *mq.Message) error {
	if out.JSONMode() {
		return out.JSON(msg)
	}

	p := msg.Payload
	detail := p.Error
	if detail == "" && len(p.Outputs) > 0 {
		detail = fmt.Sprint(p.Outputs)
	}
	return out.Linef("%s  %-14s %s  pairs=%d  %s",
		msg.Timestamp.Format(time.RFC3339),
		msg.Type,
		p.RunID,
		p.Pairs,
		detail,
	)
}
