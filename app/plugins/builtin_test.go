package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltinSinksRegistered(t *testing.T) {
	names := Sinks()
	for _, want := range []string{"nop", "prometheus", "influx", "mqtt"} {
		assert.Contains(t, names, want)
	}
}
