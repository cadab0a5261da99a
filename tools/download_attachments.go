package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rgabriel/mcp-gmail-attachments/attachment"
	"github.com/rgabriel/mcp-gmail-attachments/config"
)

// DownloadAttachmentsHandler creates a handler that saves every attachment
// of a Gmail message, identified by its hexadecimal X-GM-MSGID, and
// returns the saved paths as a JSON array.
func DownloadAttachmentsHandler(downloader AttachmentDownloader, mailbox config.Mailbox) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !mailbox.HasCredentials() {
			return mcp.NewToolResultError(fmt.Sprintf("failed to download attachments: %v", attachment.ErrMissingCredentials)), nil
		}

		args := req.GetArguments()

		// Get required message_id
		messageID, _ := args["message_id"].(string)
		if err := validateMessageID(messageID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		// Get download_folder (default to ./attachments)
		folder, _ := args["download_folder"].(string)
		if folder == "" {
			folder = attachment.DefaultDownloadFolder
		}
		if err := validateDownloadFolder(folder); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		paths, err := downloader.Fetch(ctx, attachment.Request{
			MessageID:      messageID,
			DownloadFolder: folder,
			Mailbox:        mailbox,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to download attachments: %v", err)), nil
		}
		if paths == nil {
			paths = []string{}
		}

		jsonData, err := json.MarshalIndent(paths, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format response: %v", err)), nil
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
