package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question         string `json:"question" jsonschema:"the question to answer from the session's documents"`
	SessionID        string `json:"session_id,omitempty" jsonschema:"session to query (default: the server's session)"`
	PreviousQuestion string `json:"previous_question,omitempty" jsonschema:"the previous question, for follow-ups"`
	PreviousAnswer   string `json:"previous_answer,omitempty" jsonschema:"the previous answer, for follow-ups"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string             `json:"answer"`
	Mode       string             `json:"mode"`
	References []domain.Reference `json:"references"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question  string `json:"question" jsonschema:"the question to retrieve chunks for"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session to query (default: the server's session)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Mode   string        `json:"mode"`
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	Text       string `json:"text"`
	Unit       int    `json:"unit"`
	DocumentID string `json:"document_id,omitempty"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path      string `json:"path" jsonschema:"absolute path of the file to ingest"`
	SessionID string `json:"session_id,omitempty" jsonschema:"target session (default: the server's session)"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Units      int    `json:"units"`
	Failed     int    `json:"failed"`
	Chunks     int    `json:"chunks"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session to list (default: the server's session)"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single ingested document.
type DocumentOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FileType  string `json:"filetype"`
	Units     int    `json:"units"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the session's documents, with page and slide references",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the document chunks a question would be answered from",
	}, s.handleRetrieve)

	if s.ports.Ingest == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Extract and index a document file into a session",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents ingested into a session",
	}, s.handleListDocuments)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	req := driving.AskRequest{
		SessionID: s.session(input.SessionID),
		Question:  input.Question,
	}
	if input.PreviousQuestion != "" {
		req.Previous = &domain.Exchange{Question: input.PreviousQuestion, Answer: input.PreviousAnswer}
	}

	answer, err := s.ports.QA.Ask(ctx, req)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:     answer.Text,
		Mode:       string(answer.Mode),
		References: answer.References,
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	retrieval, err := s.ports.QA.Retrieve(ctx, s.session(input.SessionID), input.Question)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Mode:   string(retrieval.Mode),
		Chunks: make([]ChunkOutput, len(retrieval.Chunks)),
		Count:  len(retrieval.Chunks),
	}
	for i, c := range retrieval.Chunks {
		output.Chunks[i] = ChunkOutput{
			Text:       c.Text,
			Unit:       c.Metadata.UnitOrDefault(),
			DocumentID: c.Metadata.DocumentID,
		}
	}
	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	result, err := s.ports.Ingest.Ingest(ctx, driving.IngestRequest{
		SessionID: s.session(input.SessionID),
		Path:      input.Path,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID: result.Document.ID,
		Units:      len(result.Units),
		Failed:     result.Failed,
		Chunks:     result.Chunks,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Ingest.Documents(ctx, s.session(input.SessionID))
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:        docs[i].ID,
			Name:      docs[i].Name,
			FileType:  string(docs[i].FileType),
			Units:     docs[i].Units,
			Size:      docs[i].Size,
			CreatedAt: docs[i].CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}
