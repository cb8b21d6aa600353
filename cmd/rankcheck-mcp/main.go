package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/rankcheck/models"
)

func main() {
	apiURL := os.Getenv("RANKCHECK_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("RANKCHECK_API_KEY")

	s := server.NewMCPServer(
		"rankcheck",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	checkRankTool := mcp.NewTool("check_rank",
		mcp.WithDescription("Find the position of a domain in Google or Baidu search results for a keyword. Drives a real browser through the result pages and returns the rank plus every result listed before it."),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("The search keyword"),
		),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("The domain to look for, e.g. kgu.cn"),
		),
		mcp.WithString("engine",
			mcp.Description("Search engine: 'google' (default) or 'baidu'"),
			mcp.Enum("google", "baidu"),
		),
		mcp.WithNumber("pages",
			mcp.Description("Maximum number of result pages to walk (default: 100, max: 1000)"),
		),
		mcp.WithString("match_mode",
			mcp.Description("How the domain is matched: 'substring' (default, anywhere in the URL) or 'host' (the URL's host is the domain or a subdomain of it)"),
			mcp.Enum("substring", "host"),
		),
	)
	s.AddTool(checkRankTool, handleCheckRank(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the rankcheck API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJob polls a job until its status is no longer "processing" or ctx ends.
func pollJob(ctx context.Context, client *http.Client, apiURL, apiKey, id string, every time.Duration) (*models.JobStatusResponse, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/jobs/"+id, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			if apiKey != "" {
				req.Header.Set("X-API-Key", apiKey)
			}

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			var status models.JobStatusResponse
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}
			if status.Status != models.JobProcessing {
				return &status, nil
			}
		}
	}
}

func handleCheckRank(apiURL, apiKey string) server.ToolHandlerFunc {
	return checkRank(apiURL, apiKey, &http.Client{Timeout: 30 * time.Second}, 2*time.Second)
}

func checkRank(apiURL, apiKey string, client *http.Client, pollEvery time.Duration) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, err := request.RequireString("keyword")
		if err != nil {
			return mcp.NewToolResultError("keyword is required"), nil
		}
		domain, err := request.RequireString("domain")
		if err != nil {
			return mcp.NewToolResultError("domain is required"), nil
		}

		payload := models.CheckRequest{
			Keyword:   keyword,
			Domain:    domain,
			Engine:    request.GetString("engine", ""),
			Pages:     request.GetInt("pages", 0),
			MatchMode: request.GetString("match_mode", ""),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/jobs", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("check request failed: %v", err)), nil
		}

		var created struct {
			models.JobResponse
			Error *models.ErrorDetail `json:"error"`
		}
		if err := json.Unmarshal(respBody, &created); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse job response: %v", err)), nil
		}
		if created.ID == "" {
			errMsg := "check job creation failed"
			if created.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", created.Error.Code, created.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		status, err := pollJob(ctx, client, apiURL, apiKey, created.ID, pollEvery)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling check job failed: %v", err)), nil
		}
		if status.Status == models.JobFailed || status.Result == nil {
			errMsg := "check failed"
			if status.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", status.Error.Code, status.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatResult(apiURL, created.ID, status.Result)), nil
	}
}

// formatResult renders a finished check as plain text for the model.
func formatResult(apiURL, id string, r *models.CheckResult) string {
	var sb strings.Builder
	if r.Found {
		sb.WriteString(fmt.Sprintf("%s ranks #%d on %s for %q (%d/%d pages read)\n",
			r.Domain, r.Rank, r.Engine, r.Keyword, r.PagesVisited, r.PagesRequested))
	} else {
		sb.WriteString(fmt.Sprintf("%s not found on %s for %q within %d pages (%d read)\n",
			r.Domain, r.Engine, r.Keyword, r.PagesRequested, r.PagesVisited))
	}
	if r.HasScreenshot {
		sb.WriteString(fmt.Sprintf("Screenshot: %s/api/v1/jobs/%s/screenshot\n", apiURL, id))
	}

	sb.WriteString("\n")
	for _, e := range r.Entries {
		sb.WriteString(fmt.Sprintf("%d. %s\n   %s\n", e.Rank, e.Title, e.URL))
	}
	return sb.String()
}
