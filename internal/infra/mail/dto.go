package mail

type ExportEmailData struct {
	Title     string
	Filename  string
	LeadCount int
	Filters   string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
