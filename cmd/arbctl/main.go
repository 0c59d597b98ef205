// Command arbctl is an operator CLI: it queries a running watcher's
// inspection server and renders the result for a terminal.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/arborwatch/xvenue-arb/internal/domain"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "inspection server base URL")
	cmd := flag.String("cmd", "arbs", "arbs | health")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	switch *cmd {
	case "health":
		if err := runHealth(client, *addr); err != nil {
			fmt.Fprintln(os.Stderr, "arbctl:", err)
			os.Exit(1)
		}
	case "arbs":
		if err := runArbs(client, *addr); err != nil {
			fmt.Fprintln(os.Stderr, "arbctl:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "arbctl: unknown -cmd %q\n", *cmd)
		os.Exit(1)
	}
}

func runHealth(client *http.Client, addr string) error {
	resp, err := client.Get(addr + "/healthz")
	if err != nil {
		return fmt.Errorf("get /healthz: %w", err)
	}
	defer resp.Body.Close()

	fmt.Printf("status: %s (http %d)\n", resp.Status, resp.StatusCode)
	return nil
}

func runArbs(client *http.Client, addr string) error {
	resp, err := client.Get(addr + "/arbs")
	if err != nil {
		return fmt.Errorf("get /arbs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get /arbs: unexpected status %s", resp.Status)
	}

	var opps []domain.Opportunity
	if err := json.NewDecoder(resp.Body).Decode(&opps); err != nil {
		return fmt.Errorf("decode /arbs response: %w", err)
	}

	if len(opps) == 0 {
		fmt.Println("no opportunities above threshold")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Combo", "PM", "Kalshi", "Cost", "Edge", "ROI%")

	for i, o := range opps {
		table.Append(
			fmt.Sprintf("%d", i+1),
			string(o.Combo),
			truncate(o.PMTitle, 28),
			truncate(o.KalshiTitle, 28),
			fmt.Sprintf("%.4f", o.TotalCost),
			fmt.Sprintf("%.4f", o.EdgeAbs),
			fmt.Sprintf("%.2f", o.EdgePctTurn),
		)
	}

	table.Render()
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
