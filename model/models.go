package model

// All lists every model the store migrates, parents before children
func All() []interface{} {
	return []interface{}{
		&User{},
		&Bootcamp{},
		&Course{},
		&Review{},
		&JWTTokenBlacklist{},
		&PasswordResetToken{},
		&CronJobLog{},
	}
}
