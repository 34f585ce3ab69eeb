package dashboard

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Book Store Analytics</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
nav a { margin-right: 1.5rem; text-decoration: none; }
nav a.active { font-weight: bold; border-bottom: 2px solid #333; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.8rem; text-align: left; }
.metric { font-size: 2rem; margin-bottom: 1.5rem; }
footer { margin-top: 2rem; color: #777; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>Book Store Analytics Dashboard</h1>
<nav>
{{range .Tabs}}<a href="/?tab={{.ID}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>{{end}}
</nav>

{{if eq .Tab "revenue"}}
<h2>Top 5 Days by Revenue</h2>
<table>
<tr><th>Date</th><th>Revenue</th></tr>
{{range .Report.TopDays}}<tr><td>{{.Date}}</td><td>{{printf "%.2f" .Revenue}}</td></tr>
{{end}}
</table>
<h2>Daily Revenue Chart</h2>
<img src="/charts/daily-revenue.png" alt="Daily revenue" width="960">
{{end}}

{{if eq .Tab "users"}}
<h2>Number of Unique Users</h2>
<div class="metric">{{.Report.UniqueUsers}}</div>
<h2>Top Customer(s)</h2>
<table>
<tr><th>Name</th><th>Address</th><th>Phone</th><th>Email</th><th>Total</th></tr>
{{range .Report.TopCustomers}}<tr><td>{{.User.Name}}</td><td>{{.User.Address}}</td><td>{{.User.Phone}}</td><td>{{.User.Email}}</td><td>{{printf "%.2f" .Total}}</td></tr>
{{end}}
</table>
{{end}}

{{if eq .Tab "authors"}}
<h2>Number of Unique Author Sets</h2>
<div class="metric">{{.Report.UniqueAuthorSets}}</div>
<h2>Most Popular Author(s)</h2>
{{with .Report.MostPopular}}
<p>{{.Authors.String}}</p>
<p>Sold count: {{.Quantity}}</p>
{{else}}
<p>No orders matched a book.</p>
{{end}}
{{end}}

<footer>run {{.RunID}} generated {{.GeneratedAt}}{{if .Hosted}} (hosted, database writes skipped){{end}}</footer>
</body>
</html>
`
