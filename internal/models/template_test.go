package models_test

import (
	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTemplateSharesAssociation() {
	template := models.DistributionTemplate{
		Name: "Payday split",
		Shares: []models.TemplateShare{
			{EnvelopeID: uuid.New(), Amount: decimal.NewFromInt(400)},
			{EnvelopeID: uuid.New(), Amount: decimal.NewFromInt(600)},
		},
	}
	suite.Require().Nil(suite.db.Create(&template).Error)

	// The shares are wired to the template via TemplateID and load back
	// with a preload
	var reloaded models.DistributionTemplate
	suite.Require().Nil(suite.db.Preload("Shares").First(&reloaded, "id = ?", template.ID).Error)

	suite.Require().Len(reloaded.Shares, 2)
	for _, share := range reloaded.Shares {
		suite.Assert().Equal(template.ID, share.TemplateID)
	}

	suite.Assert().True(reloaded.Total().Equal(decimal.NewFromInt(1000)))
}

func (suite *TestSuiteStandard) TestTemplateTrimsWhitespace() {
	template := models.DistributionTemplate{Name: "  Payday split ", Note: " note "}
	suite.Require().Nil(suite.db.Create(&template).Error)

	suite.Assert().Equal("Payday split", template.Name)
	suite.Assert().Equal("note", template.Note)
}
