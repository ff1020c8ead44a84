package mcpServer

import (
	"context"
	"net/http"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/formatter"
	"github.com/akolanti/DoubtSolver/internal/loader"
	"github.com/akolanti/DoubtSolver/internal/session"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the loaded document"`
}

type AskOutput struct {
	Outcome string `json:"outcome" jsonschema:"reply, empty or error"`
	Answer  string `json:"answer"`
	Plain   string `json:"plain" jsonschema:"the answer with markdown markers removed"`
}

type LoadInput struct {
	Path      string `json:"path" jsonschema:"path of a PDF, text, markdown or DOCX file, relative to the documents directory"`
	Name      string `json:"name,omitempty" jsonschema:"display name, defaults to the file name"`
	MediaType string `json:"media_type,omitempty" jsonschema:"declared media type, used when the extension is ambiguous"`
}

type DocumentOutput struct {
	Name        string `json:"name"`
	PageCount   int    `json:"page_count"`
	Characters  int    `json:"characters"`
	ContentType string `json:"content_type"`
}

type EmptyInput struct{}

type ClearOutput struct {
	Cleared bool `json:"cleared"`
}

type SessionOutput struct {
	SessionId     string `json:"session_id"`
	Document      string `json:"document,omitempty"`
	IsLoading     bool   `json:"is_loading"`
	LastError     string `json:"last_error,omitempty"`
	AwaitingReply bool   `json:"awaiting_reply"`
	MessageCount  int    `json:"message_count"`
}

type Options struct {
	// DocumentsRoot is the only directory load_document reads from.
	DocumentsRoot string
}

type tools struct {
	session       *session.Session
	documentsRoot string
	logger        *logger_i.Logger
}

// NewServer exposes the session as MCP tools. Every call runs synchronously against the
// same session the HTTP handlers use, so the single-outstanding-question rule is shared.
func NewServer(sess *session.Session, opts Options) *mcp.Server {
	t := &tools{session: sess, documentsRoot: opts.DocumentsRoot, logger: logger_i.NewLogger("MCP")}

	server := mcp.NewServer(&mcp.Implementation{Name: config.MCPServerName, Version: config.MCPServerVersion}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a question answered strictly from the loaded document. Waits for the reply.",
	}, t.ask)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "load_document",
		Description: "Load a document from the server's documents directory, replacing the active one and clearing the conversation.",
	}, t.load)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_conversation",
		Description: "Empty the conversation log.",
	}, t.clear)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_session",
		Description: "Report the active document and conversation state.",
	}, t.state)
	return server
}

// NewHandler serves server over streamable HTTP.
func NewHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

func (t *tools) ask(ctx context.Context, _ *mcp.CallToolRequest, in AskInput) (*mcp.CallToolResult, AskOutput, error) {
	reply, err := t.session.Ask(ctx, in.Question)
	if err != nil {
		t.logger.Warn("ask_question rejected", "error", err)
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Outcome: string(reply.Outcome),
		Answer:  reply.Message.Content,
		Plain:   formatter.PlainText(reply.Blocks),
	}, nil
}

func (t *tools) load(ctx context.Context, _ *mcp.CallToolRequest, in LoadInput) (*mcp.CallToolResult, DocumentOutput, error) {
	path, err := resolveDocumentPath(t.documentsRoot, in.Path)
	if err != nil {
		t.logger.Warn("load_document refused", "path", in.Path, "error", err)
		return nil, DocumentOutput{}, err
	}
	doc, err := t.session.LoadDocument(ctx, loader.Source{Name: in.Name, Path: path, MediaType: in.MediaType})
	if err != nil {
		t.logger.Warn("load_document failed", "path", in.Path, "error", err)
		return nil, DocumentOutput{}, err
	}
	return nil, DocumentOutput{
		Name:        doc.Name,
		PageCount:   doc.PageCount,
		Characters:  t.session.DocumentState().Characters,
		ContentType: string(doc.ContentType),
	}, nil
}

func (t *tools) clear(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ClearOutput, error) {
	if err := t.session.ClearConversation(ctx); err != nil {
		return nil, ClearOutput{}, err
	}
	return nil, ClearOutput{Cleared: true}, nil
}

func (t *tools) state(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, SessionOutput, error) {
	snap, err := t.session.Snapshot(ctx)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{
		SessionId:     snap.SessionId,
		Document:      snap.Document.Document.Name,
		IsLoading:     snap.Document.IsLoading,
		LastError:     snap.Document.LastError,
		AwaitingReply: snap.AwaitingReply,
		MessageCount:  len(snap.Messages),
	}, nil
}
