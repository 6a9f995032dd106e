package services

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeAuditStore struct {
	entries []*models.AuditLog
	err     error
}

func (f *fakeAuditStore) Insert(entry *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditStore) actions() []string {
	var out []string
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}
