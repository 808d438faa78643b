package workerconfig

import (
	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/pkg/audit"
	"github.com/ormstack/moderation-go/pkg/classifier"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/dispatch"
	"github.com/ormstack/moderation-go/pkg/handlers"
	"github.com/ormstack/moderation-go/pkg/interfaces/meta"
	"github.com/ormstack/moderation-go/pkg/notify"
	"github.com/ormstack/moderation-go/pkg/policy"
	"github.com/ormstack/moderation-go/pkg/queue"
)

// HandlerConfig bundles the collaborators needed to wire the queue
// handlers.
type HandlerConfig struct {
	Comments   *comment.Store
	Policies   *policy.Store
	Classifier classifier.Classifier
	Platform   meta.CommentActions
	Queue      queue.Queue
	Auditor    audit.Sink
	Logger     *logrus.Logger
	Worker     Config
}

// ConfigureHandlers sets up all moderation queue handlers.
func ConfigureHandlers(config HandlerConfig) ([]handlers.Handler, error) {
	options := handlers.Options{
		Interval:  config.Worker.PollInterval,
		BatchSize: config.Worker.BatchSize,
	}

	dispatcher := dispatch.NewDispatcher(config.Queue, config.Logger)
	slack := notify.NewSlackNotifier(config.Worker.SlackWebhookURL, config.Logger)

	notifiers := map[string]notify.Notifier{
		notify.ChannelSlack: slack,
		notify.ChannelEmail: notify.NewLogNotifier(notify.ChannelEmail, config.Logger),
		notify.ChannelSMS:   notify.NewLogNotifier(notify.ChannelSMS, config.Logger),
	}

	return []handlers.Handler{
		handlers.NewClassifyHandler(config.Comments, config.Policies, config.Classifier,
			dispatcher, config.Queue, config.Auditor, config.Logger, options),
		handlers.NewReplyHandler(config.Comments, config.Policies, config.Platform,
			config.Queue, config.Auditor, config.Logger, options),
		handlers.NewHideHandler(config.Comments, config.Policies, config.Platform,
			config.Comments, dispatcher, config.Queue, config.Auditor, config.Logger, options),
		handlers.NewEscalateHandler(config.Comments, config.Policies, notifiers, slack,
			config.Queue, config.Auditor, config.Logger, options),
	}, nil
}
