package worker

import (
	"github.com/spec-kit/stall-admin/internal/audit"
	"github.com/spec-kit/stall-admin/internal/events"
)

// StartAuditWorker subscribes the audit recorder to lifecycle events.
func StartAuditWorker(dispatcher events.Dispatcher, recorder *audit.Recorder) {
	if dispatcher == nil || recorder == nil {
		return
	}
	recorder.RegisterHandlers(dispatcher)
}
