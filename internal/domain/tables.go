package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Catalog
	&Product{},
	&Service{},
	// Users
	&UserProfile{},
	&AdminNote{},
	&LoginActivity{},
	&UserSession{},
	&UserPreference{},
	// Rate limiting
	&RateLimitTracking{},
}
