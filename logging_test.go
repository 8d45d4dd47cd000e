package camfov

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut, "SECAM", false)

	l.Debugf("hidden %d", 1)
	l.Infof("rigs=%d", 3)
	l.Warnf("slow")
	l.Errorf("bad %s", "thing")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[SECAM] INFO: rigs=3")
	assert.Contains(t, errOut.String(), "[SECAM] WARN: slow")
	assert.Contains(t, errOut.String(), "[SECAM] ERROR: bad thing")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown")
	assert.Contains(t, out.String(), "[SECAM] DEBUG: shown")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerTo(&out, &out, "", true)
	l.Infof("plain")
	assert.Contains(t, out.String(), "INFO: plain")
	assert.NotContains(t, out.String(), "[")
}

func TestLoggingModule(t *testing.T) {
	app := NewAppBuilder().UseModule(LoggingModule{Prefix: "X", Debug: true}).Build()
	l, ok := Resource[DefaultLogger](app)
	assert.True(t, ok)
	assert.Same(t, l, app.Logger())
	assert.True(t, app.Logger().DebugEnabled())

	custom := NewNopLogger()
	app = NewAppBuilder().UseModule(LoggingModule{Logger: custom}).Build()
	assert.Same(t, custom, app.Logger())
}
