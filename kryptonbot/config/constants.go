package config

import "time"

// UI constants
const (
	UsersPerPage = 10

	ErrorColor   = 0xE74C3C
	SuccessColor = 0x2ECC71
	InfoColor    = 0x3498DB
	WarningColor = 0xF39C12
	BoostColor   = 0x9B59B6

	FooterText = "Krypton Executor"
)

// Database and timing constants
const (
	DefaultQueryTimeout = 5 * time.Second
	BulkOpTimeout       = 5 * time.Minute

	// Rolling window for /daily, anchored to the previous claim.
	DailyClaimWindow = 24 * time.Hour

	// How long a destructive-command confirmation stays valid.
	ConfirmationTimeout = 30 * time.Second
)

// system_settings keys
const (
	SettingBoost  = "boost_system"
	SettingShop   = "shop_prices"
	SettingReward = "reward_settings"
)
