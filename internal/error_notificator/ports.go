package error_notificator

import "context"

type Notificator interface {
	// Notify — сообщает админу об упавшем запросе
	Notify(ctx context.Context, stage string, err error, details string) error
}
