package service

import (
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// Operation names an audited user action
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpLogin  Operation = "login"
)

// OperationLog writes audit entries tagged type=operation so they can be
// split from the application log downstream
type OperationLog struct {
	logger *logger.Logger
}

// NewOperationLog creates an operation log on top of log
func NewOperationLog(log *logger.Logger) *OperationLog {
	return &OperationLog{logger: log.WithComponent("operation-log")}
}

// Record logs one operation; a nil log discards it
func (o *OperationLog) Record(op Operation, userID, resource, resourceID string, keysAndValues ...interface{}) {
	if o == nil {
		return
	}
	fields := append([]interface{}{
		"type", "operation",
		"operation", string(op),
		"user_id", userID,
		"resource", resource,
		"resource_id", resourceID,
	}, keysAndValues...)
	o.logger.Info("Operation", fields...)
}
