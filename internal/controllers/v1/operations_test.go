package v1_test

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/ledger"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransfer() {
	groceries := suite.createEnvelope("Groceries", false)
	savings := suite.createEnvelope("Savings", true)

	suite.createTransaction(groceries.ID, models.TransactionTypeIncome, decimal.NewFromInt(200), "2026-03-01T10:00:00Z")

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/transfers", map[string]any{
		"fromEnvelopeId": groceries.ID,
		"toEnvelopeId":   savings.ID,
		"amount":         decimal.NewFromInt(50),
		"date":           "2026-03-10T10:00:00Z",
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var result ledger.TransferResult
	test.DecodeResponse(suite.T(), &recorder, &result)
	suite.Require().NotNil(result.Expense)
	suite.Require().NotNil(result.Income)
	suite.Assert().Equal(result.TransferID, *result.Expense.TransferID)
	suite.Assert().Equal(result.TransferID, *result.Income.TransferID)

	// Both legs are in the ledger
	var legs []models.Transaction
	suite.Require().Nil(suite.db.Where("transfer_id = ?", result.TransferID).Find(&legs).Error)
	suite.Assert().Len(legs, 2)
}

func (suite *TestSuiteStandard) TestTransferValidation() {
	groceries := suite.createEnvelope("Groceries", false)
	savings := suite.createEnvelope("Savings", true)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{
			"same envelope",
			map[string]any{"fromEnvelopeId": groceries.ID, "toEnvelopeId": groceries.ID, "amount": decimal.NewFromInt(10)},
			http.StatusBadRequest,
		},
		{
			"zero amount",
			map[string]any{"fromEnvelopeId": groceries.ID, "toEnvelopeId": savings.ID, "amount": decimal.Zero},
			http.StatusBadRequest,
		},
		{
			"unknown source",
			map[string]any{"fromEnvelopeId": uuid.New(), "toEnvelopeId": savings.ID, "amount": decimal.NewFromInt(10)},
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/transfers", tt.body)
		test.AssertHTTPStatus(suite.T(), &recorder, tt.status)
	}
}

func (suite *TestSuiteStandard) TestTransferRetryComplete() {
	groceries := suite.createEnvelope("Groceries", false)
	savings := suite.createEnvelope("Savings", true)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/transfers", map[string]any{
		"fromEnvelopeId": groceries.ID,
		"toEnvelopeId":   savings.ID,
		"amount":         decimal.NewFromInt(50),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var result ledger.TransferResult
	test.DecodeResponse(suite.T(), &recorder, &result)

	// Both legs exist, the retry has nothing to do
	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/transfers/"+result.TransferID.String()+"/retry", map[string]any{
		"envelopeId": savings.ID,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestDistribution() {
	groceries := suite.createEnvelope("Groceries", false)
	rent := suite.createEnvelope("Rent", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/distributions", map[string]any{
		"deposit": decimal.NewFromInt(1000),
		"date":    "2026-03-01T10:00:00Z",
		"shares": []map[string]any{
			{"envelopeId": groceries.ID, "amount": decimal.NewFromInt(400)},
			{"envelopeId": rent.ID, "amount": decimal.NewFromInt(600)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var result ledger.DistributionResult
	test.DecodeResponse(suite.T(), &recorder, &result)
	suite.Assert().Len(result.Transactions, 2)
}

func (suite *TestSuiteStandard) TestDistributionUnbalanced() {
	groceries := suite.createEnvelope("Groceries", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/distributions", map[string]any{
		"deposit": decimal.NewFromInt(1000),
		"shares": []map[string]any{
			{"envelopeId": groceries.ID, "amount": decimal.NewFromInt(400)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTemplateLifecycle() {
	groceries := suite.createEnvelope("Groceries", false)
	rent := suite.createEnvelope("Rent", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/templates", map[string]any{
		"name":  "Payday split",
		"total": decimal.NewFromInt(1000),
		"shares": []map[string]any{
			{"envelopeId": groceries.ID, "amount": decimal.NewFromInt(400)},
			{"envelopeId": rent.ID, "amount": decimal.NewFromInt(600)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var template models.DistributionTemplate
	test.DecodeResponse(suite.T(), &recorder, &template)
	suite.Require().Len(template.Shares, 2)

	// Apply the template to a matching deposit
	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/distributions", map[string]any{
		"deposit":    decimal.NewFromInt(1000),
		"templateId": template.ID,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	// A deposit the template does not balance against is rejected
	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/distributions", map[string]any{
		"deposit":    decimal.NewFromInt(900),
		"templateId": template.ID,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	recorder = test.Request(suite.T(), suite.router, http.MethodDelete, "/v1/templates/"+template.ID.String(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
}

func (suite *TestSuiteStandard) TestTemplateUnbalancedSave() {
	groceries := suite.createEnvelope("Groceries", false)
	rent := suite.createEnvelope("Rent", false)

	// Shares that do not sum to the declared total must not be saved
	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/templates", map[string]any{
		"name":  "Short split",
		"total": decimal.NewFromInt(100),
		"shares": []map[string]any{
			{"envelopeId": groceries.ID, "amount": decimal.NewFromInt(40)},
			{"envelopeId": rent.ID, "amount": decimal.NewFromInt(50)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/templates", map[string]any{
		"name":  "Full split",
		"total": decimal.NewFromInt(100),
		"shares": []map[string]any{
			{"envelopeId": groceries.ID, "amount": decimal.NewFromInt(40)},
			{"envelopeId": rent.ID, "amount": decimal.NewFromInt(60)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var template models.DistributionTemplate
	test.DecodeResponse(suite.T(), &recorder, &template)

	// Updates are checked the same way and leave the stored shares alone
	recorder = test.Request(suite.T(), suite.router, http.MethodPatch, "/v1/templates/"+template.ID.String(), map[string]any{
		"name":  "Full split",
		"total": decimal.NewFromInt(100),
		"shares": []map[string]any{
			{"envelopeId": groceries.ID, "amount": decimal.NewFromInt(99)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	recorder = test.Request(suite.T(), suite.router, http.MethodGet, "/v1/templates/"+template.ID.String(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &template)
	suite.Assert().Len(template.Shares, 2)
}
