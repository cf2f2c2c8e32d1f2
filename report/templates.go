package report

import "html/template"

type devicesView struct {
	Rows   []Row
	Sorted string
}

type notificationRow struct {
	Ts       string `json:"ts"`
	Message  string `json:"message"`
	Notified bool   `json:"notified"`
}

type notificationsView struct {
	Entries []notificationRow
	Total   int
}

var devicesTemplate = template.Must(template.New("devices").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>dhcpreact</title></head><body>
<p><a href="/reconnect">reconnect</a> | <a href="/datetime">datetime</a> | <a href="/ip">ip</a> | <a href="/notifications">notifications</a></p>
{{if .Rows}}
<p>Count: {{len .Rows}}, Sorted: {{.Sorted}}</p>
<table cellspacing="0" border="1">
<tr><th>MAC Address</th><th>IP Address</th><th>Client Name</th><th>Host Name</th><th>MAC Vendor</th><th>Reconnect Count Per Day</th><th>Last connected</th><th>Notify</th></tr>
{{range .Rows}}<tr><td>{{.Mac}}</td><td>{{.Ip}}</td><td>{{.Name}}</td><td>{{.HostName}}</td><td>{{.MacVendor}}</td><td>{{.ReconnectCountPerDay}}</td><td>{{.LastConnected}}</td><td>{{.Notify}}</td></tr>
{{end}}</table>
{{else}}
<p>No data!</p>
{{end}}
</body></html>
`))

var notificationsTemplate = template.Must(template.New("notifications").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>dhcpreact notifications</title></head><body>
<p><a href="/reconnect">devices</a></p>
{{if .Total}}
<p>Count: {{len .Entries}}/{{.Total}}, Sorted: datetime (desc)</p>
<table cellspacing="0" border="1">
<tr><th>Datetime</th><th>Notification</th><th>Notified</th></tr>
{{range .Entries}}<tr><td>{{.Ts}}</td><td>{{.Message}}</td><td>{{.Notified}}</td></tr>
{{end}}</table>
{{else}}
<p>No data!</p>
{{end}}
</body></html>
`))
