package handlers

// HandlerBundle aggregates the handler groups for route registration.
type HandlerBundle struct {
	Property *PropertyHandler
	Images   *ImageHandler
	Notes    *NoteHandler
	Settings *SettingsHandler
	Backup   *BackupHandler
	Admin    *AdminHandler
}
