package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&About{},
		&Project{},
		&Certificate{},
		&TechStack{},
		&WorkExperience{},
		&Jobdesk{},
		&Education{},
	}
}
