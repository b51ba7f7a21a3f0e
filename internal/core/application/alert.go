package application

import (
	"context"
	"time"

	"github.com/beastmint/mintd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

func (s *mintService) publishAlert(topic ports.Topic, message ports.MintAlert) {
	publishAlert(s.alerts, topic, message)
}

func publishAlert(alerts ports.Alerts, topic ports.Topic, message any) {
	if alerts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := alerts.Publish(ctx, topic, message); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("failed to publish alert")
	}
}
