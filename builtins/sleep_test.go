package builtins

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepPausesForConfiguredSeconds(t *testing.T) {
	start := time.Now()
	result := runSuite(t, `
services: {}
testCases:
  short pause:
    steps:
      - type: sleep
        time: 1
`)
	assert.True(t, result.OK())
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestSleepTimeCanBeTemplated(t *testing.T) {
	result := runSuite(t, `
services: {}
testCases:
  templated pause:
    steps:
      - type: setVariable
        name: pause
        value: 0
      - type: sleep
        time: "{{.Vars.pause}}"
`)
	assert.True(t, result.OK())
}
