package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordWithdrawalCountsByStatus(t *testing.T) {
	before := testutil.ToFloat64(withdrawalsTotal.WithLabelValues("approved"))

	RecordWithdrawal("approved")

	assert.Equal(t, before+1, testutil.ToFloat64(withdrawalsTotal.WithLabelValues("approved")))
}

func TestRecordWithdrawalDefaultsUnknownStatus(t *testing.T) {
	before := testutil.ToFloat64(withdrawalsTotal.WithLabelValues("unknown"))

	RecordWithdrawal("")

	assert.Equal(t, before+1, testutil.ToFloat64(withdrawalsTotal.WithLabelValues("unknown")))
}

func TestRecordErrorCountsByCodeAndSeverity(t *testing.T) {
	before := testutil.ToFloat64(errorsTotal.WithLabelValues("E000", "high"))

	RecordError("E000", "high")

	assert.Equal(t, before+1, testutil.ToFloat64(errorsTotal.WithLabelValues("E000", "high")))
}
