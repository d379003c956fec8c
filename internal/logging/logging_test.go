package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := New(false, &buf)
	log.Debug("hidden")
	log.WithFields(logrus.Fields{"stage": "crawl"}).Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "stage=crawl")

	buf.Reset()
	verbose := New(true, &buf)
	verbose.Debug("detail")
	assert.Contains(t, buf.String(), "detail")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	log := New(false, nil)
	assert.Equal(t, logrus.FieldLogger(log), OrDiscard(log))
}
