package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// Config defines the admin CLI environment variables.
type Config struct {
	BaseURL string        `env:"CHAT_API_URL,default=http://localhost:8080"`
	Timeout time.Duration `env:"CHAT_API_TIMEOUT,default=5s"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	client := &http.Client{Timeout: config.Timeout}

	if len(args) == 0 {
		return fmt.Errorf("usage: admin <list|kick NAME>")
	}

	switch args[0] {
	case "list":
		return list(client, config.BaseURL)
	case "kick":
		if len(args) < 2 {
			return fmt.Errorf("usage: admin kick NAME")
		}
		return kick(client, config.BaseURL, args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

type status struct {
	TotalClients int     `json:"totalClients"`
	ClientNames  string  `json:"clientNames"`
	GameStatus   string  `json:"gameStatus"`
	RAMBytes     uint64  `json:"ramBytes"`
	CPUPercent   float64 `json:"cpuPercent"`
}

// list renders the connected participants and server stats as tables.
func list(client *http.Client, baseURL string) error {
	var st status
	if err := getJSON(client, baseURL+"/api/status", &st); err != nil {
		return err
	}
	var webUsers []string
	if err := getJSON(client, baseURL+"/api/webchat/webusers", &webUsers); err != nil {
		return err
	}
	web := make(map[string]struct{}, len(webUsers))
	for _, name := range webUsers {
		web[strings.ToLower(name)] = struct{}{}
	}

	users := tablewriter.NewWriter(os.Stdout)
	users.SetHeader([]string{"Name", "Kind"})
	for _, name := range strings.Split(st.ClientNames, ",") {
		if name == "" {
			continue
		}
		kind := "socket"
		if _, ok := web[strings.ToLower(name)]; ok {
			kind = "web"
		}
		users.Append([]string{name, kind})
	}
	users.Render()

	server := tablewriter.NewWriter(os.Stdout)
	server.SetHeader([]string{"Clients", "Game", "RAM (MB)", "CPU %"})
	server.Append([]string{
		fmt.Sprintf("%d", st.TotalClients),
		st.GameStatus,
		fmt.Sprintf("%.1f", float64(st.RAMBytes)/(1024*1024)),
		fmt.Sprintf("%.1f", st.CPUPercent),
	})
	server.Render()
	return nil
}

// kick asks the gateway to force-disconnect a named participant.
func kick(client *http.Client, baseURL, name string) error {
	body, err := json.Marshal(map[string]string{"username": name})
	if err != nil {
		return err
	}
	resp, err := client.Post(baseURL+"/api/admin/remove", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		fmt.Printf("%s removed\n", name)
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("no connected user named %q", name)
	default:
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
}

func getJSON(client *http.Client, url string, dst any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
