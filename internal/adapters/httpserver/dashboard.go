package httpserver

// dashboardTemplate renders the aggregate report header and the trade list.
const dashboardTemplate = `<!DOCTYPE html>
<html>
<head>
<title>Trade Ledger</title>
<style>
body { font-family: sans-serif; margin: 2em; background: #111; color: #ddd; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; margin-top: 1em; }
th, td { border: 1px solid #444; padding: 0.4em 0.8em; text-align: right; }
th { background: #222; }
td.sym, th.sym { text-align: left; }
.stats span { display: inline-block; margin-right: 2em; }
.OPEN { color: #7ec8e3; }
.PARTIAL { color: #e3c87e; }
.CLOSED { color: #888; }
</style>
</head>
<body>
<h1>Trade Ledger</h1>
<div class="stats">
<span>Equity: {{.Report.Equity}}</span>
<span>PnL: {{.Report.TotalPnL}}</span>
<span>Win rate: {{.Report.WinRate}}</span>
<span>Avg R: {{.Report.AvgR}}</span>
<span>Closed: {{.Report.ClosedTrades}}</span>
</div>
<table>
<tr><th class="sym">Trade</th><th class="sym">Symbol</th><th>TF</th><th>Entry</th><th>Stop</th><th>Size</th><th>Status</th><th>Opened</th></tr>
{{range .Trades}}
<tr>
<td class="sym">{{.TradeID}}</td>
<td class="sym">{{.Symbol}}</td>
<td>{{.Timeframe}}</td>
<td>{{.Entry}}</td>
<td>{{.Stop}}</td>
<td>{{.Size}}</td>
<td class="{{.Status}}">{{.Status}}</td>
<td>{{.OpenedAt}}</td>
</tr>
{{end}}
</table>
</body>
</html>`
