package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Helper functions for common field types
func String(key, value string) zap.Field {
	return zap.String(key, value)
}

func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

func Int64(key string, value int64) zap.Field {
	return zap.Int64(key, value)
}

func Uint32(key string, value uint32) zap.Field {
	return zap.Uint32(key, value)
}

func Uint64(key string, value uint64) zap.Field {
	return zap.Uint64(key, value)
}

func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

func Any(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}

// Attribute tags a log line with an attribute store node id.
func Attribute(id uint64) zap.Field {
	return zap.Uint64(FieldAttribute, id)
}

// AttributeType renders the type the way device tooling prints it (0x0000FFFF).
func AttributeType(t uint32) zap.Field {
	return zap.String(FieldAttributeType, formatType(t))
}

func formatType(t uint32) string {
	return fmt.Sprintf("0x%08X", t)
}
