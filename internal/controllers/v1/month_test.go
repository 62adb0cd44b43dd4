package v1_test

import (
	"net/http"

	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/rollover"
	"github.com/moneyfold/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestGetMonth() {
	groceries := suite.createEnvelope("Groceries", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/income-sources", map[string]any{
		"month":  "2026-03",
		"name":   "Salary",
		"amount": decimal.NewFromInt(3000),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/allocations", map[string]any{
		"month":      "2026-03",
		"envelopeId": groceries.ID,
		"amount":     decimal.NewFromInt(400),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	suite.createTransaction(groceries.ID, models.TransactionTypeIncome, decimal.NewFromInt(400), "2026-03-01T10:00:00Z")
	suite.createTransaction(groceries.ID, models.TransactionTypeExpense, decimal.NewFromInt(150), "2026-03-10T10:00:00Z")

	recorder = test.Request(suite.T(), suite.router, http.MethodGet, "/v1/months/2026-03", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response struct {
		Month         string `json:"month"`
		IncomeSources []models.IncomeSource
		Envelopes     []struct {
			models.Envelope
			Allocated decimal.Decimal `json:"allocated"`
			Balance   decimal.Decimal `json:"balance"`
		}
	}
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Equal("2026-03", response.Month)
	suite.Require().Len(response.IncomeSources, 1)
	suite.Require().Len(response.Envelopes, 1)
	suite.Assert().True(response.Envelopes[0].Allocated.Equal(decimal.NewFromInt(400)))
	suite.Assert().True(response.Envelopes[0].Balance.Equal(decimal.NewFromInt(250)))
}

func (suite *TestSuiteStandard) TestRollover() {
	groceries := suite.createEnvelope("Groceries", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/income-sources", map[string]any{
		"month":  "2026-03",
		"name":   "Salary",
		"amount": decimal.NewFromInt(3000),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/allocations", map[string]any{
		"month":      "2026-03",
		"envelopeId": groceries.ID,
		"amount":     decimal.NewFromInt(400),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/months/2026-04/rollover", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var result rollover.Result
	test.DecodeResponse(suite.T(), &recorder, &result)
	suite.Assert().Len(result.IncomeSources, 1)
	suite.Assert().Len(result.Allocations, 1)
	suite.Assert().Len(result.Seeds, 1)

	// The target month is no longer empty, a second rollover is rejected
	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/months/2026-04/rollover", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestAllocationMonthUnique() {
	groceries := suite.createEnvelope("Groceries", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/allocations", map[string]any{
		"month":      "2026-03",
		"envelopeId": groceries.ID,
		"amount":     decimal.NewFromInt(400),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/allocations", map[string]any{
		"month":      "2026-03",
		"envelopeId": groceries.ID,
		"amount":     decimal.NewFromInt(500),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}
