package hive2rel

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// ConversionIDLogField is the log field identifying all the messages of a
// single conversion.
const ConversionIDLogField = "conversionID"

func (c *Converter) newLogEntry(fields logrus.Fields) *logrus.Entry {
	return logrus.WithFields(fields).WithField(ConversionIDLogField, uuid.New().String())
}

// Log prints an INFO message with the given message and args if the
// converter is in debug mode.
func (c *Converter) Log(log *logrus.Entry, msg string, args ...interface{}) {
	if c != nil && c.Debug {
		log.Infof(msg, args...)
	}
}

// LogNode prints the converted tree, with the row type of every node, if
// the converter is in debug mode.
func (c *Converter) LogNode(log *logrus.Entry, n sql.Node) {
	if c != nil && n != nil && c.Debug {
		log.Infof("converted tree:\n%s", n.DebugString())
	}
}
