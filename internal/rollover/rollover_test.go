package rollover_test

import (
	"context"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/rollover"
	"github.com/moneyfold/backend/internal/types"
	"github.com/moneyfold/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// dbWriter writes straight to the database, standing in for the sync
// engine's optimistic-update path.
type dbWriter struct {
	db *gorm.DB
}

func (w dbWriter) CreateTransaction(_ context.Context, transaction *models.Transaction) error {
	return w.db.Create(transaction).Error
}

func (w dbWriter) CreateIncomeSource(_ context.Context, source *models.IncomeSource) error {
	return w.db.Create(source).Error
}

func (w dbWriter) CreateAllocation(_ context.Context, allocation *models.Allocation) error {
	return w.db.Create(allocation).Error
}

type TestSuiteStandard struct {
	suite.Suite
	db *gorm.DB
}

func TestSuite(t *testing.T) {
	suite.Run(t, new(TestSuiteStandard))
}

func (suite *TestSuiteStandard) SetupTest() {
	db, err := models.Connect(test.TmpFile(suite.T()))
	if err != nil {
		log.Fatalf("Database connection failed with: %#v", err)
	}

	suite.db = db
}

func (suite *TestSuiteStandard) TearDownTest() {
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *TestSuiteStandard) createEnvelope(name string, piggybank bool) models.Envelope {
	envelope := models.Envelope{Name: name, Piggybank: piggybank}
	suite.Require().Nil(suite.db.Create(&envelope).Error)
	return envelope
}

func (suite *TestSuiteStandard) TestRollover() {
	userID := uuid.New()
	march := types.NewMonth(2026, 3)
	april := march.AddDate(0, 1)

	groceries := suite.createEnvelope("Groceries", false)
	savings := suite.createEnvelope("Savings", true)
	unfunded := suite.createEnvelope("Unfunded", false)

	suite.Require().Nil(suite.db.Create(&models.IncomeSource{
		UserID: userID, Month: march, Name: "Salary", Amount: decimal.NewFromInt(3000),
	}).Error)

	for _, allocation := range []models.Allocation{
		{UserID: userID, Month: march, EnvelopeID: groceries.ID, Amount: decimal.NewFromInt(400)},
		{UserID: userID, Month: march, EnvelopeID: savings.ID, Amount: decimal.NewFromInt(200)},
		{UserID: userID, Month: march, EnvelopeID: unfunded.ID, Amount: decimal.Zero},
	} {
		suite.Require().Nil(suite.db.Create(&allocation).Error)
	}

	result, err := rollover.CopyPreviousMonthAllocations(context.Background(), suite.db, dbWriter{suite.db}, userID, april)
	suite.Require().Nil(err)

	suite.Assert().Equal(april, result.Month)
	suite.Assert().Len(result.IncomeSources, 1)
	suite.Assert().Len(result.Allocations, 3)

	// Zero allocations are copied but not seeded
	suite.Require().Len(result.Seeds, 2)

	var seeds []models.Transaction
	suite.Require().Nil(suite.db.Where("month = ?", april).Find(&seeds).Error)
	suite.Require().Len(seeds, 2)

	for _, seed := range seeds {
		suite.Assert().Equal(models.TransactionTypeIncome, seed.Type)
		suite.Assert().Equal("Initial Deposit", seed.Note)
		suite.Assert().Equal(april, seed.Month)
	}

	var copied models.IncomeSource
	suite.Require().Nil(suite.db.Where("month = ?", april).First(&copied).Error)
	suite.Assert().Equal("Salary", copied.Name)
	suite.Assert().True(copied.Amount.Equal(decimal.NewFromInt(3000)))

	// The piggybank-targeted allocation is treated like any other
	var savingsAllocation models.Allocation
	suite.Require().Nil(suite.db.Where("month = ? AND envelope_id = ?", april, savings.ID).First(&savingsAllocation).Error)
	suite.Assert().True(savingsAllocation.Amount.Equal(decimal.NewFromInt(200)))
}

func (suite *TestSuiteStandard) TestRolloverRequiresEmptyTarget() {
	userID := uuid.New()
	april := types.NewMonth(2026, 4)

	envelope := suite.createEnvelope("Groceries", false)
	suite.Require().Nil(suite.db.Create(&models.Allocation{
		UserID: userID, Month: april, EnvelopeID: envelope.ID, Amount: decimal.NewFromInt(100),
	}).Error)

	_, err := rollover.CopyPreviousMonthAllocations(context.Background(), suite.db, dbWriter{suite.db}, userID, april)
	suite.Assert().ErrorIs(err, rollover.ErrTargetMonthNotEmpty)
}

func (suite *TestSuiteStandard) TestRolloverRequiresTargetMonth() {
	_, err := rollover.CopyPreviousMonthAllocations(context.Background(), suite.db, dbWriter{suite.db}, uuid.New(), types.Month{})
	suite.Assert().ErrorIs(err, rollover.ErrTargetMonthZero)
}

func (suite *TestSuiteStandard) TestRolloverEmptyPreviousMonth() {
	result, err := rollover.CopyPreviousMonthAllocations(context.Background(), suite.db, dbWriter{suite.db}, uuid.New(), types.NewMonth(2026, 4))
	suite.Require().Nil(err)
	suite.Assert().Empty(result.IncomeSources)
	suite.Assert().Empty(result.Allocations)
	suite.Assert().Empty(result.Seeds)
}

func (suite *TestSuiteStandard) TestTargetIsEmpty() {
	userID := uuid.New()
	april := types.NewMonth(2026, 4)

	empty, err := rollover.TargetIsEmpty(suite.db, april)
	suite.Require().Nil(err)
	suite.Assert().True(empty)

	suite.Require().Nil(suite.db.Create(&models.IncomeSource{
		UserID: userID, Month: april, Name: "Salary", Amount: decimal.NewFromInt(1),
	}).Error)

	empty, err = rollover.TargetIsEmpty(suite.db, april)
	suite.Require().Nil(err)
	suite.Assert().False(empty)
}
