package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTag creates a tag with a unique name.
func CreateTestTag(t *testing.T, db *gorm.DB, userID string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		UserID: userID,
		Name:   fmt.Sprintf("Test Tag %d", nextID()),
		Color:  "#22C55E",
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestCreditCard creates a card closing on closingDay and due on dueDay.
func CreateTestCreditCard(t *testing.T, db *gorm.DB, userID string, closingDay, dueDay int) *models.CreditCard {
	t.Helper()

	card := &models.CreditCard{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Card %d", nextID()),
		ClosingDay: closingDay,
		DueDay:     dueDay,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test credit card: %v", err)
	}
	return card
}

// CreateTestTransaction creates a transaction of the given category and
// amount (in cents) on the given date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, category models.TransactionCategory, amount int64, date *time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Category:    category,
		Amount:      amount,
		Date:        date,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
	}
	if category == models.CategoryVariableExpense {
		method := models.PaymentMethodDebit
		tx.PaymentMethod = &method
	}
	if category == models.CategorySavings {
		direction := models.SavingsDeposit
		tx.SavingsDirection = &direction
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestCreditPurchase creates a variable expense paid with the given card.
func CreateTestCreditPurchase(t *testing.T, db *gorm.DB, userID, cardID string, amount int64, date *time.Time) *models.Transaction {
	t.Helper()

	method := models.PaymentMethodCredit
	tx := &models.Transaction{
		UserID:        userID,
		Category:      models.CategoryVariableExpense,
		Amount:        amount,
		Date:          date,
		Description:   fmt.Sprintf("Test Purchase %d", nextID()),
		PaymentMethod: &method,
		CreditCardID:  &cardID,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test credit purchase: %v", err)
	}
	return tx
}
