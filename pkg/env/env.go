package env

const (
	GoogleCredentialsFile = "GOOGLE_CREDENTIALS_FILE"
	GoogleSheetID         = "GOOGLE_SHEET_ID"
	GoogleWorksheetID     = "GOOGLE_WORKSHEET_ID"
	GoogleWorksheetID2    = "GOOGLE_WORKSHEET_ID_2"
	IBITUnits             = "IBIT_UNITS"
	IBITSharesOutstanding = "IBIT_SHARES_OUTSTANDING"
	ETHAUnits             = "ETHA_UNITS"
	ETHASharesOutstanding = "ETHA_SHARES_OUTSTANDING"
	AuditLogFile          = "AUDIT_LOG_FILE"
	LogLevel              = "LOG_LEVEL"
)
