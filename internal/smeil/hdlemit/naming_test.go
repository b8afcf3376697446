package hdlemit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SignalSafe_ReplacesHyphensAndLeadingDigits(t *testing.T) {
	assert.Equal(t, "my_proc", SignalSafe("my-proc"))
	assert.Equal(t, "n2x", SignalSafe("2x"))
	assert.Equal(t, "plain", SignalSafe("plain"))
	assert.Equal(t, "_", SignalSafe(""))
}

func Test_EntityName_Lowercases(t *testing.T) {
	assert.Equal(t, "plusone", EntityName("PlusOne"))
	assert.Equal(t, "my_proc", EntityName("My-Proc"))
}

func Test_SignalName_QualifiesByBus(t *testing.T) {
	assert.Equal(t, "ib_val", SignalName("ib", "val"))
}

func Test_ExportWrapperName_And_TestbenchName(t *testing.T) {
	assert.Equal(t, "top_export", ExportWrapperName("top"))
	assert.Equal(t, "top_tb", TestbenchName("top"))
}
