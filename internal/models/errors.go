package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	ErrEnvelopeNameNotUnique          = errors.New("the envelope name must be unique")
	ErrAllocationMonthNotUnique       = errors.New("you can not create multiple allocations for the same envelope and month")
	ErrTemplateShareEnvelopeNotUnique = errors.New("a distribution template can only contain one share per envelope")
	ErrAmountNegative                 = errors.New("the amount must not be negative")
	ErrTransactionTypeInvalid         = errors.New("the transaction type must be income or expense")
	ErrTransactionReconciled          = errors.New("a reconciled transaction can not be changed, un-reconcile it first")
)
