package v1_test

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestEnvelopeCRUD() {
	envelope := suite.createEnvelope("Groceries", false)
	suite.Assert().Equal("Groceries", envelope.Name)

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/envelopes", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var envelopes []models.Envelope
	test.DecodeResponse(suite.T(), &recorder, &envelopes)
	suite.Require().Len(envelopes, 1)

	recorder = test.Request(suite.T(), suite.router, http.MethodPatch, "/v1/envelopes/"+envelope.ID.String(), map[string]any{
		"name":     "Food",
		"archived": true,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), suite.router, http.MethodGet, "/v1/envelopes/"+envelope.ID.String(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var reloaded models.Envelope
	test.DecodeResponse(suite.T(), &recorder, &reloaded)
	suite.Assert().Equal("Food", reloaded.Name)
	suite.Assert().True(reloaded.Archived)

	recorder = test.Request(suite.T(), suite.router, http.MethodDelete, "/v1/envelopes/"+envelope.ID.String(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), suite.router, http.MethodGet, "/v1/envelopes/"+envelope.ID.String(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEnvelopeNameUnique() {
	suite.createEnvelope("Groceries", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/envelopes", map[string]any{
		"name": "Groceries",
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestEnvelopeNotFound() {
	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/envelopes/"+uuid.NewString(), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEnvelopeBalance() {
	envelope := suite.createEnvelope("Groceries", false)

	suite.createTransaction(envelope.ID, models.TransactionTypeIncome, decimal.NewFromInt(100), "2026-03-02T10:00:00Z")
	suite.createTransaction(envelope.ID, models.TransactionTypeExpense, decimal.RequireFromString("12.34"), "2026-03-05T10:00:00Z")
	suite.createTransaction(envelope.ID, models.TransactionTypeExpense, decimal.NewFromInt(20), "2026-04-01T10:00:00Z")

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, fmt.Sprintf("/v1/envelopes/%s/balance?month=2026-03", envelope.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response struct {
		Balance decimal.Decimal `json:"balance"`
	}
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().True(response.Balance.Equal(decimal.RequireFromString("87.66")), "balance is %s", response.Balance)

	// A regular envelope needs a month
	recorder = test.Request(suite.T(), suite.router, http.MethodGet, fmt.Sprintf("/v1/envelopes/%s/balance", envelope.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestPiggybankBalanceIgnoresMonth() {
	piggybank := suite.createEnvelope("Savings", true)

	suite.createTransaction(piggybank.ID, models.TransactionTypeIncome, decimal.NewFromInt(100), "2026-01-02T10:00:00Z")
	suite.createTransaction(piggybank.ID, models.TransactionTypeIncome, decimal.NewFromInt(50), "2026-04-02T10:00:00Z")

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, fmt.Sprintf("/v1/envelopes/%s/balance", piggybank.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response struct {
		Balance decimal.Decimal `json:"balance"`
	}
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().True(response.Balance.Equal(decimal.NewFromInt(150)), "balance is %s", response.Balance)
}

func (suite *TestSuiteStandard) TestEnvelopeReorder() {
	first := suite.createEnvelope("First", false)
	second := suite.createEnvelope("Second", false)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/envelopes/reorder", map[string]any{
		"ids": []string{second.ID.String(), first.ID.String()},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), suite.router, http.MethodGet, "/v1/envelopes", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var envelopes []models.Envelope
	test.DecodeResponse(suite.T(), &recorder, &envelopes)
	suite.Require().Len(envelopes, 2)
	suite.Assert().Equal("Second", envelopes[0].Name)
	suite.Assert().Equal("First", envelopes[1].Name)
}
