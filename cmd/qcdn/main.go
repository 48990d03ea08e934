// qcdn is the upload helper: reads files (or stdin) and posts them to a
// qcdn server, printing the download URL of each stored file.
//
// The server address and credential come from CDN_HOST and CDN_TOKEN, or
// from ~/.cdn_info (env-file format) when the variables are unset.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type uploadTarget struct {
	host  string
	token string
}

func main() {
	var (
		name   string
		expire string
	)

	rootCmd := &cobra.Command{
		Use:   "qcdn [file...]",
		Short: "Upload files to a qcdn server.",
		Long: `Uploads one or more files and prints the download URL for each.
Use "-" to read from stdin, in which case --name is required.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget()
			if err != nil {
				return err
			}
			return uploadAll(cmd, target, args, name, expire)
		},
	}
	rootCmd.Flags().StringVarP(&name, "name", "n", "", "uploaded file name (defaults to the source base name)")
	rootCmd.Flags().StringVarP(&expire, "expire", "e", "", "expiry timestamp, RFC 3339")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "failed:", err)
		os.Exit(1)
	}
}

// resolveTarget reads CDN_HOST/CDN_TOKEN, falling back to ~/.cdn_info.
func resolveTarget() (uploadTarget, error) {
	host := os.Getenv("CDN_HOST")
	token := os.Getenv("CDN_TOKEN")
	if host != "" {
		return uploadTarget{host: host, token: token}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return uploadTarget{}, fmt.Errorf("CDN_HOST unset and no home directory: %w", err)
	}
	info, err := godotenv.Read(filepath.Join(home, ".cdn_info"))
	if err != nil {
		return uploadTarget{}, fmt.Errorf("CDN_HOST unset and ~/.cdn_info unreadable: %w", err)
	}
	if info["host"] == "" {
		return uploadTarget{}, fmt.Errorf("no host in ~/.cdn_info")
	}
	return uploadTarget{host: info["host"], token: info["token"]}, nil
}

func uploadAll(cmd *cobra.Command, target uploadTarget, sources []string, name, expire string) error {
	if len(sources) > 1 && name != "" {
		return fmt.Errorf("--name only makes sense with a single source")
	}

	client := &http.Client{Timeout: 5 * time.Minute}

	var g errgroup.Group
	urls := make([]string, len(sources))
	sizes := make([]int64, len(sources))

	for i, source := range sources {
		g.Go(func() error {
			content, uploadName, err := readSource(source, name)
			if err != nil {
				return err
			}
			url, err := upload(client, target, uploadName, expire, content)
			if err != nil {
				return fmt.Errorf("%s: %w", uploadName, err)
			}
			urls[i] = url
			sizes[i] = int64(len(content))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, url := range urls {
		fmt.Fprintln(cmd.OutOrStdout(), url)
		fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %s (%s)\n", sources[i], humanize.Bytes(uint64(sizes[i])))
	}
	return nil
}

func readSource(source, nameOverride string) (content []byte, name string, err error) {
	if source == "-" {
		if nameOverride == "" {
			return nil, "", fmt.Errorf("--name required when reading from stdin")
		}
		content, err = io.ReadAll(os.Stdin)
		return content, nameOverride, err
	}

	content, err = os.ReadFile(source)
	if err != nil {
		return nil, "", err
	}
	name = nameOverride
	if name == "" {
		name = filepath.Base(source)
	}
	return content, name, nil
}

func upload(client *http.Client, target uploadTarget, name, expire string, content []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if expire != "" {
		if err := mw.WriteField("expire_time", expire); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, target.host+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if target.token != "" {
		req.Header.Set("Authorization", target.token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("server answered %d: %s", resp.StatusCode, msg)
	}

	var payload struct {
		Data struct {
			FileInfo struct {
				DownloadURL string `json:"download_url"`
			} `json:"file_info"`
			ModifyToken string `json:"modify_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("unreadable server response: %w", err)
	}
	if payload.Data.ModifyToken != "" {
		fmt.Fprintf(os.Stderr, "modify token for %s: %s\n", name, payload.Data.ModifyToken)
	}
	return payload.Data.FileInfo.DownloadURL, nil
}
