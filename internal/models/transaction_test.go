package models_test

import (
	"time"

	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/types"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransactionMonthDerived() {
	envelope := suite.createTestEnvelope(models.Envelope{Name: "Groceries"})

	transaction := suite.createTestTransaction(models.Transaction{
		EnvelopeID: envelope.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(17.32),
		Date:       time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
	})

	suite.Assert().True(transaction.Month.Equal(types.NewMonth(2024, 1)), "month should be derived from the date, is %s", transaction.Month)
}

func (suite *TestSuiteStandard) TestTransactionInvalidType() {
	envelope := suite.createTestEnvelope(models.Envelope{Name: "Groceries"})

	err := suite.db.Create(&models.Transaction{
		EnvelopeID: envelope.ID,
		Type:       "deposit",
		Amount:     decimal.NewFromFloat(10),
	}).Error

	suite.Assert().ErrorIs(err, models.ErrTransactionTypeInvalid)
}

func (suite *TestSuiteStandard) TestTransactionNegativeAmount() {
	envelope := suite.createTestEnvelope(models.Envelope{Name: "Groceries"})

	err := suite.db.Create(&models.Transaction{
		EnvelopeID: envelope.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(-1),
	}).Error

	suite.Assert().ErrorIs(err, models.ErrAmountNegative)
}

func (suite *TestSuiteStandard) TestTransactionSigned() {
	income := models.Transaction{Type: models.TransactionTypeIncome, Amount: decimal.NewFromFloat(10)}
	expense := models.Transaction{Type: models.TransactionTypeExpense, Amount: decimal.NewFromFloat(10)}

	suite.Assert().True(income.Signed().Equal(decimal.NewFromFloat(10)))
	suite.Assert().True(expense.Signed().Equal(decimal.NewFromFloat(-10)))
}

func (suite *TestSuiteStandard) TestTransactionReconciledImmutable() {
	envelope := suite.createTestEnvelope(models.Envelope{Name: "Groceries"})

	transaction := suite.createTestTransaction(models.Transaction{
		EnvelopeID: envelope.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(20),
		Reconciled: true,
	})

	err := transaction.UpdateFields(suite.db, models.Transaction{Amount: decimal.NewFromFloat(30)})
	suite.Assert().ErrorIs(err, models.ErrTransactionReconciled)

	// Un-reconcile, then the update is allowed
	suite.Require().Nil(transaction.Reconcile(suite.db, false))
	transaction.Reconciled = false

	update := models.Transaction{
		EnvelopeID: envelope.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(30),
		Date:       transaction.Date,
	}
	suite.Assert().Nil(transaction.UpdateFields(suite.db, update))
}

func (suite *TestSuiteStandard) TestEnvelopeNameUniquePerUser() {
	envelope := suite.createTestEnvelope(models.Envelope{Name: "Groceries"})

	err := suite.db.Create(&models.Envelope{UserID: envelope.UserID, Name: "Groceries"}).Error
	suite.Assert().ErrorIs(err, models.ErrEnvelopeNameNotUnique)
}

func (suite *TestSuiteStandard) TestAllocationUniquePerMonth() {
	envelope := suite.createTestEnvelope(models.Envelope{Name: "Groceries"})

	allocation := models.Allocation{
		EnvelopeID: envelope.ID,
		Month:      types.NewMonth(2024, 2),
		Amount:     decimal.NewFromFloat(100),
	}
	suite.Require().Nil(suite.db.Create(&allocation).Error)

	err := suite.db.Create(&models.Allocation{
		EnvelopeID: envelope.ID,
		Month:      types.NewMonth(2024, 2),
		Amount:     decimal.NewFromFloat(50),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrAllocationMonthNotUnique)
}
