package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransaction(t *testing.T) {
	TransactionsTotal.Reset()

	RecordTransaction("CHARGE", ResultCommitted)
	RecordTransaction("CHARGE", ResultCommitted)
	RecordTransaction("USE", ResultInsufficientFunds)

	assert.Equal(t, float64(2), testutil.ToFloat64(TransactionsTotal.WithLabelValues("CHARGE", ResultCommitted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(TransactionsTotal.WithLabelValues("USE", ResultInsufficientFunds)))
	assert.Equal(t, float64(0), testutil.ToFloat64(TransactionsTotal.WithLabelValues("USE", ResultCommitted)))
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("PATCH", "/point/:id/charge", "200", 0.01)
	RecordHTTPRequest("PATCH", "/point/:id/charge", "400", 0.02)

	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("PATCH", "/point/:id/charge", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("PATCH", "/point/:id/charge", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordGRPCRequest(t *testing.T) {
	GRPCRequestsTotal.Reset()

	RecordGRPCRequest("/point.v1.PointService/Use", "FailedPrecondition")

	assert.Equal(t, float64(1), testutil.ToFloat64(GRPCRequestsTotal.WithLabelValues("/point.v1.PointService/Use", "FailedPrecondition")))
}

func TestObserveLockWait(t *testing.T) {
	assert.NotPanics(t, func() { ObserveLockWait(time.Millisecond) })
	assert.Equal(t, 1, testutil.CollectAndCount(LockWaitSeconds))
}
