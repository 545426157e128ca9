package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Client{},
		&Service{},
		&Visit{},
		&VisitLine{},
		&Expense{},
		&NotificationLog{},
	}
}
