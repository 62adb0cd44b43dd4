package v1_test

import (
	"net/http"

	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransactionInvalidType() {
	envelope := suite.createEnvelope("Groceries", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/transactions", map[string]any{
		"envelopeId": envelope.ID,
		"type":       "donation",
		"amount":     decimal.NewFromInt(10),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTransactionMonthDerived() {
	envelope := suite.createEnvelope("Groceries", false)
	transaction := suite.createTransaction(envelope.ID, models.TransactionTypeExpense, decimal.NewFromInt(10), "2026-03-15T12:00:00Z")

	suite.Assert().Equal("2026-03", transaction.Month.String())
}

func (suite *TestSuiteStandard) TestTransactionListFilter() {
	groceries := suite.createEnvelope("Groceries", false)
	rent := suite.createEnvelope("Rent", false)

	suite.createTransaction(groceries.ID, models.TransactionTypeExpense, decimal.NewFromInt(10), "2026-03-15T12:00:00Z")
	suite.createTransaction(rent.ID, models.TransactionTypeExpense, decimal.NewFromInt(900), "2026-03-01T12:00:00Z")
	suite.createTransaction(groceries.ID, models.TransactionTypeExpense, decimal.NewFromInt(20), "2026-04-02T12:00:00Z")

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/transactions?month=2026-03&envelope="+groceries.ID.String(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var transactions []models.Transaction
	test.DecodeResponse(suite.T(), &recorder, &transactions)
	suite.Require().Len(transactions, 1)
	suite.Assert().Equal(groceries.ID, transactions[0].EnvelopeID)
}

func (suite *TestSuiteStandard) TestTransactionReconciledImmutable() {
	envelope := suite.createEnvelope("Groceries", false)
	transaction := suite.createTransaction(envelope.ID, models.TransactionTypeExpense, decimal.NewFromInt(10), "2026-03-15T12:00:00Z")

	recorder := test.Request(suite.T(), suite.router, http.MethodPatch, "/v1/transactions/"+transaction.ID.String()+"/reconciled", map[string]any{
		"reconciled": true,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	// Reconciled transactions reject field updates
	recorder = test.Request(suite.T(), suite.router, http.MethodPatch, "/v1/transactions/"+transaction.ID.String(), map[string]any{
		"envelopeId": envelope.ID,
		"type":       models.TransactionTypeExpense,
		"amount":     decimal.NewFromInt(99),
		"date":       "2026-03-15T12:00:00Z",
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)

	// Un-reconciling makes it mutable again
	recorder = test.Request(suite.T(), suite.router, http.MethodPatch, "/v1/transactions/"+transaction.ID.String()+"/reconciled", map[string]any{
		"reconciled": false,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), suite.router, http.MethodPatch, "/v1/transactions/"+transaction.ID.String(), map[string]any{
		"envelopeId": envelope.ID,
		"type":       models.TransactionTypeExpense,
		"amount":     decimal.NewFromInt(99),
		"date":       "2026-03-15T12:00:00Z",
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var updated models.Transaction
	test.DecodeResponse(suite.T(), &recorder, &updated)
	suite.Assert().True(updated.Amount.Equal(decimal.NewFromInt(99)))
}

func (suite *TestSuiteStandard) TestTransactionDelete() {
	envelope := suite.createEnvelope("Groceries", false)
	transaction := suite.createTransaction(envelope.ID, models.TransactionTypeExpense, decimal.NewFromInt(10), "2026-03-15T12:00:00Z")

	recorder := test.Request(suite.T(), suite.router, http.MethodDelete, "/v1/transactions/"+transaction.ID.String(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), suite.router, http.MethodGet, "/v1/transactions/"+transaction.ID.String(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}
