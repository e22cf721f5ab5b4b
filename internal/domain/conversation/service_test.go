package conversation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/repository"
	"github.com/valislegal/valis/internal/repository/mocks"
)

var roster = []conversation.Agent{
	{ID: "a1", Name: "Giulia Ferri", Nickname: "giulia"},
	{ID: "a2", Name: "Marco Conti", Nickname: "Marco"},
	{ID: "a3", Name: "Analista", Nickname: "analista"},
}

func ptr[T any](v T) *T { return &v }

func TestParseMentions(t *testing.T) {
	require.Equal(t, []string{"giulia", "marco"}, conversation.ParseMentions("@Giulia verifica con @marco, poi @giulia."))
	require.Empty(t, conversation.ParseMentions("scrivi a avv@studio.it"))
	require.Empty(t, conversation.ParseMentions(""))
}

func TestConversationService_ResolveAgents(t *testing.T) {
	svc := conversation.NewService(roster, &mocks.MessageRepository{}, &mocks.DraftRepository{}, nil)

	agents, err := svc.ResolveAgents("chiedi a @marco e @sconosciuto", []string{"a1", "a1"})
	require.NoError(t, err)
	require.Len(t, agents, 2)
	require.Equal(t, "a1", agents[0].ID)
	require.Equal(t, "a2", agents[1].ID)

	_, err = svc.ResolveAgents("", []string{"zz"})
	require.ErrorIs(t, err, conversation.ErrAgentNotFound)
}

func TestConversationService_GetDraft_Missing(t *testing.T) {
	ctx := context.Background()
	drafts := &mocks.DraftRepository{}
	drafts.On("Get", ctx, "t1", "p1").Return(nil, repository.ErrNotFound)

	svc := conversation.NewService(roster, &mocks.MessageRepository{}, drafts, nil)
	draft, err := svc.GetDraft(ctx, "t1", "p1")
	require.NoError(t, err)
	require.True(t, draft.IsEmpty())
	require.Equal(t, "p1", draft.ProjectID)
}

func TestConversationService_UpdateDraft(t *testing.T) {
	ctx := context.Background()
	drafts := &mocks.DraftRepository{}
	drafts.On("Get", ctx, "t1", "p1").Return(&conversation.Draft{TenantID: "t1", ProjectID: "p1", Prompt: "vecchio", AgentIDs: []string{"a3"}}, nil)
	drafts.On("Save", ctx, "t1", mock.MatchedBy(func(d *conversation.Draft) bool {
		return d.Prompt == "nuovo" && len(d.AgentIDs) == 1 && d.AgentIDs[0] == "a3"
	})).Return(nil)

	svc := conversation.NewService(roster, &mocks.MessageRepository{}, drafts, nil)
	draft, err := svc.UpdateDraft(ctx, "t1", conversation.DraftUpdate{ProjectID: "p1", Prompt: ptr("nuovo")})
	require.NoError(t, err)
	require.Equal(t, "nuovo", draft.Prompt)
	drafts.AssertExpectations(t)
}

func TestConversationService_UpdateDraft_UnknownAgent(t *testing.T) {
	ctx := context.Background()
	drafts := &mocks.DraftRepository{}
	drafts.On("Get", ctx, "t1", "").Return(nil, repository.ErrNotFound)

	svc := conversation.NewService(roster, &mocks.MessageRepository{}, drafts, nil)
	_, err := svc.UpdateDraft(ctx, "t1", conversation.DraftUpdate{AgentIDs: []string{"nope"}})
	require.ErrorIs(t, err, conversation.ErrAgentNotFound)
	drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationService_ClearDraft_IgnoresMissing(t *testing.T) {
	ctx := context.Background()
	drafts := &mocks.DraftRepository{}
	drafts.On("Delete", ctx, "t1", "p1").Return(repository.ErrNotFound)

	svc := conversation.NewService(roster, &mocks.MessageRepository{}, drafts, nil)
	require.NoError(t, svc.ClearDraft(ctx, "t1", "p1"))
}

func TestConversationService_AppendMessage(t *testing.T) {
	ctx := context.Background()
	messages := &mocks.MessageRepository{}
	messages.On("Append", ctx, "t1", mock.AnythingOfType("*conversation.Message")).Return(nil)

	svc := conversation.NewService(roster, messages, &mocks.DraftRepository{}, nil)

	msg := &conversation.Message{Role: conversation.RoleUser, Author: "Tu", Text: "Prepara una diffida"}
	require.NoError(t, svc.AppendMessage(ctx, "t1", msg))
	require.NotEmpty(t, msg.ID)
	require.Equal(t, "t1", msg.TenantID)
	require.False(t, msg.CreatedAt.IsZero())

	require.ErrorIs(t, svc.AppendMessage(ctx, "t1", &conversation.Message{Role: conversation.RoleUser, Text: "  "}), conversation.ErrInvalidInput)
	require.ErrorIs(t, svc.AppendMessage(ctx, "t1", &conversation.Message{Role: conversation.RoleAgent, Text: "ok"}), conversation.ErrInvalidInput)
	require.ErrorIs(t, svc.AppendMessage(ctx, "t1", &conversation.Message{Role: "system", Text: "ok"}), conversation.ErrInvalidInput)
	messages.AssertNumberOfCalls(t, "Append", 1)
}

func TestConversationService_ListAgentsReturnsCopy(t *testing.T) {
	svc := conversation.NewService(roster, &mocks.MessageRepository{}, &mocks.DraftRepository{}, nil)
	agents := svc.ListAgents()
	agents[0].Name = "changed"
	require.Equal(t, "Giulia Ferri", svc.ListAgents()[0].Name)
}
