package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type ScheduledTask struct {
	name   string
	cronID cron.EntryID
	cron   *cron.Cron
	cancel chan struct{}
}

// NewScheduledTask runs taskFunc on cronSpec until Cancel is called.
func NewScheduledTask(name, cronSpec string, logger logrus.FieldLogger, taskFunc func()) (*ScheduledTask, error) {
	c := cron.New()
	cancel := make(chan struct{})
	task := &ScheduledTask{
		name:   name,
		cron:   c,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-cancel:
			return
		default:
			logger.WithField("task", name).Debug("running scheduled task")
			taskFunc()
		}
	})
	if err != nil {
		return nil, err
	}

	task.cronID = id
	c.Start()
	return task, nil
}

func (s *ScheduledTask) Cancel() {
	s.cron.Remove(s.cronID)
	close(s.cancel)
}
