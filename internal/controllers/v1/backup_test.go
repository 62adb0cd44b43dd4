package v1_test

import (
	"net/http"
	"strings"

	"github.com/moneyfold/backend/internal/backup"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestBackupRoundTrip() {
	envelope := suite.createEnvelope("Groceries", false)
	suite.createTransaction(envelope.ID, models.TransactionTypeIncome, decimal.NewFromInt(100), "2026-03-01T10:00:00Z")

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/backup", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var document backup.Document
	test.DecodeResponse(suite.T(), &recorder, &document)
	suite.Assert().Equal(backup.FormatVersion, document.AppVersion)
	suite.Require().Len(document.Envelopes, 1)
	suite.Require().Len(document.Transactions, 1)

	// Restoring the export leaves the same data in place
	restore := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/backup", recorder.Body.String())
	test.AssertHTTPStatus(suite.T(), &restore, http.StatusNoContent)

	var count int64
	suite.Require().Nil(suite.db.Model(&models.Transaction{}).Count(&count).Error)
	suite.Assert().Equal(int64(1), count)
}

func (suite *TestSuiteStandard) TestBackupRejectsMalformed() {
	suite.createEnvelope("Groceries", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/backup", `{"version":"2.0"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	// The rejected upload did not touch the data
	var count int64
	suite.Require().Nil(suite.db.Model(&models.Envelope{}).Count(&count).Error)
	suite.Assert().Equal(int64(1), count)
}

func (suite *TestSuiteStandard) TestBackupCSV() {
	envelope := suite.createEnvelope("Groceries", false)
	suite.createTransaction(envelope.ID, models.TransactionTypeExpense, decimal.RequireFromString("12.5"), "2026-03-05T10:00:00Z")

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/backup/csv", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	lines := strings.Split(strings.TrimSpace(recorder.Body.String()), "\n")
	suite.Require().Len(lines, 2)
	suite.Assert().Equal("Date,Merchant,Notes,Amount,Type,Envelope,Reconciled", lines[0])
	suite.Assert().Equal("2026-03-05,,,12.50,Expense,Groceries,no", lines[1])
}

func (suite *TestSuiteStandard) TestCleanup() {
	recorder := test.Request(suite.T(), suite.router, http.MethodDelete, "/v1/cleanup", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	recorder = test.Request(suite.T(), suite.router, http.MethodDelete, "/v1/cleanup?confirm=yes-please-delete-orphans", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response struct {
		Removed int64 `json:"removed"`
	}
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(int64(0), response.Removed)
}
