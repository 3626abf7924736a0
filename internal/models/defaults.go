package models

import "time"

// SystemCategories are shared by every user and never mutated
// through the API. Their ids are fixed so seeding is idempotent.
func SystemCategories(now time.Time) []Category {
	seed := []struct {
		id, name, icon, color, typ string
	}{
		{"00000000-0000-4000-8000-000000000001", "Salary", "💼", "#22c55e", TypeIncome},
		{"00000000-0000-4000-8000-000000000002", "Freelance", "💻", "#10b981", TypeIncome},
		{"00000000-0000-4000-8000-000000000003", "Investment", "📈", "#14b8a6", TypeIncome},
		{"00000000-0000-4000-8000-000000000004", "Bonus", "💰", "#059669", TypeIncome},
		{"00000000-0000-4000-8000-000000000005", "Food", "🍔", "#ef4444", TypeExpense},
		{"00000000-0000-4000-8000-000000000006", "Transport", "🚗", "#f97316", TypeExpense},
		{"00000000-0000-4000-8000-000000000007", "Shopping", "🛒", "#eab308", TypeExpense},
		{"00000000-0000-4000-8000-000000000008", "Entertainment", "🎮", "#8b5cf6", TypeExpense},
		{"00000000-0000-4000-8000-000000000009", "Bills", "📄", "#ec4899", TypeExpense},
		{"00000000-0000-4000-8000-000000000010", "Health", "💊", "#06b6d4", TypeExpense},
		{"00000000-0000-4000-8000-000000000011", "Education", "📚", "#3b82f6", TypeExpense},
		{"00000000-0000-4000-8000-000000000012", "Others", "📦", "#6b7280", TypeExpense},
	}

	categories := make([]Category, 0, len(seed))
	for _, s := range seed {
		icon, color := s.icon, s.color
		categories = append(categories, Category{
			ID:        s.id,
			Name:      s.name,
			Type:      s.typ,
			Icon:      &icon,
			Color:     &color,
			IsDefault: true,
			CreatedAt: now,
		})
	}
	return categories
}

// DefaultWalletName is used for wallets provisioned on the user's behalf
const DefaultWalletName = "Cash"

// NewDefaultWallet returns the starter cash wallet for a user
func NewDefaultWallet(id, userID string, now time.Time) Wallet {
	icon, color := "💵", "#22c55e"
	return Wallet{
		ID:        id,
		UserID:    userID,
		Name:      DefaultWalletName,
		Type:      WalletCash,
		Icon:      &icon,
		Color:     &color,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
