package v1_test

import (
	"net/http"

	"github.com/moneyfold/backend/internal/sync"
	"github.com/moneyfold/backend/test"
)

func (suite *TestSuiteStandard) TestSyncStatus() {
	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/sync", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var status sync.Status
	test.DecodeResponse(suite.T(), &recorder, &status)
	suite.Assert().True(status.Online)
	suite.Assert().Equal(int64(0), status.QueueLength)
}

func (suite *TestSuiteStandard) TestTriggerSync() {
	suite.createEnvelope("Groceries", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/sync", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var status sync.Status
	test.DecodeResponse(suite.T(), &recorder, &status)
	suite.Assert().Equal(int64(0), status.QueueLength)
}
