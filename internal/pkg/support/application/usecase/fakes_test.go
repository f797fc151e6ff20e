package usecase

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	nport "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/port"
	qport "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/queue/port"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func i64(v int64) *int64 { return &v }

// memUsers is an in-memory repository.UserRepository.
type memUsers struct {
	users map[int64]support.User
	logs  []support.UserLog
}

func newMemUsers(users ...support.User) *memUsers {
	m := &memUsers{users: make(map[int64]support.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) GetUser(_ context.Context, id int64) (*support.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*support.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) ListUsersByRole(_ context.Context, role support.UserRole) ([]support.User, error) {
	var out []support.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) SetUserPresence(_ context.Context, id int64, p support.UserPresence) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Presence = p
	m.users[id] = u
	return nil
}

func (m *memUsers) AppendUserLog(_ context.Context, log support.UserLog) error {
	log.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, log)
	return nil
}

// memHierarchy is an in-memory repository.HierarchyRepository.
type memHierarchy struct {
	edges []support.HierarchyEdge
}

func (m *memHierarchy) addEdge(parentID, childID int64) {
	m.edges = append(m.edges, support.HierarchyEdge{
		ID:       int64(len(m.edges) + 1),
		ParentID: parentID,
		ChildID:  childID,
		Active:   true,
	})
}

func (m *memHierarchy) ActiveParent(_ context.Context, childID int64) (*support.HierarchyEdge, error) {
	for _, e := range m.edges {
		if e.Active && e.ChildID == childID {
			out := e
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memHierarchy) ActiveChildren(_ context.Context, parentID int64) ([]support.HierarchyEdge, error) {
	var out []support.HierarchyEdge
	for _, e := range m.edges {
		if e.Active && e.ParentID == parentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memHierarchy) CreateEdge(_ context.Context, parentID, childID int64) (*support.HierarchyEdge, error) {
	m.addEdge(parentID, childID)
	out := m.edges[len(m.edges)-1]
	return &out, nil
}

// memConversations is an in-memory repository.ConversationRepository. The
// agent loads returned by ListAgentLoads are derived from the stored
// conversations and the online agents registered through addAgent.
type memConversations struct {
	convs       map[int64]*support.Conversation
	assignments []support.Assignment
	typs        []support.Typification
	agents      []support.User
	nextID      int64
	now         time.Time
}

func newMemConversations() *memConversations {
	return &memConversations{
		convs: make(map[int64]*support.Conversation),
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memConversations) addAgent(u support.User) { m.agents = append(m.agents, u) }

func (m *memConversations) add(c support.Conversation) *support.Conversation {
	m.nextID++
	c.ID = m.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now.Add(time.Duration(m.nextID) * time.Minute)
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	m.convs[c.ID] = &c
	return m.convs[c.ID]
}

func (m *memConversations) GetConversation(_ context.Context, id int64) (*support.Conversation, error) {
	c, ok := m.convs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *memConversations) GetConversationByThread(_ context.Context, threadID string) (*support.Conversation, error) {
	for _, c := range m.convs {
		if c.ThreadID == threadID {
			out := *c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memConversations) CreateConversation(_ context.Context, c support.Conversation) (*support.Conversation, error) {
	out := *m.add(c)
	return &out, nil
}

func (m *memConversations) ListPending(_ context.Context) ([]support.Conversation, error) {
	var out []support.Conversation
	for _, c := range m.convs {
		if c.State == support.StatePending {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memConversations) ListAll(_ context.Context, assignedTo []int64) ([]support.Conversation, error) {
	var scope map[int64]bool
	if assignedTo != nil {
		scope = make(map[int64]bool)
		for _, id := range assignedTo {
			scope[id] = true
		}
	}
	var out []support.Conversation
	for _, c := range m.convs {
		if scope != nil && (c.AssignedUserID == nil || !scope[*c.AssignedUserID]) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memConversations) ListAssignedTo(_ context.Context, userID int64) ([]support.Conversation, error) {
	return m.ListAll(context.Background(), []int64{userID})
}

func (m *memConversations) CountOpenAssignedTo(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, c := range m.convs {
		if c.State == support.StateOpen && c.AssignedTo(userID) {
			n++
		}
	}
	return n, nil
}

func (m *memConversations) ListAgentLoads(_ context.Context) ([]support.AgentLoad, error) {
	var out []support.AgentLoad
	for _, a := range m.agents {
		load := support.AgentLoad{User: a}
		for _, c := range m.convs {
			if c.State == support.StateOpen && c.AssignedTo(a.ID) {
				load.OpenCount++
			}
		}
		for i := range m.assignments {
			rec := m.assignments[i]
			if rec.UserID == a.ID && (load.LastAssignedAt == nil || rec.CreatedAt.After(*load.LastAssignedAt)) {
				at := rec.CreatedAt
				load.LastAssignedAt = &at
			}
		}
		out = append(out, load)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.ID < out[j].User.ID })
	return out, nil
}

func (m *memConversations) RecordAssignment(_ context.Context, rec support.Assignment, expectedPrev *int64, retarget bool) (*support.Assignment, error) {
	c, ok := m.convs[rec.ConversationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if c.State == support.StateClosed {
		return nil, repository.ErrAssignmentConflict
	}
	switch {
	case expectedPrev == nil && c.AssignedUserID != nil:
		return nil, repository.ErrAssignmentConflict
	case expectedPrev != nil && (c.AssignedUserID == nil || *c.AssignedUserID != *expectedPrev):
		return nil, repository.ErrAssignmentConflict
	}
	if retarget {
		id := rec.UserID
		c.AssignedUserID = &id
		if c.State == support.StatePending {
			c.State = support.StateOpen
		}
	}
	rec.ID = int64(len(m.assignments) + 1)
	rec.CreatedAt = m.now.Add(time.Duration(len(m.assignments)) * time.Second)
	m.assignments = append(m.assignments, rec)
	out := rec
	return &out, nil
}

func (m *memConversations) Close(_ context.Context, id int64, t *support.Typification) error {
	c, ok := m.convs[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.State = support.StateClosed
	if t != nil {
		m.typs = append(m.typs, *t)
	}
	return nil
}

func (m *memConversations) SetUnreadCount(_ context.Context, id int64, count int) error {
	c, ok := m.convs[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.UnreadCount = count
	return nil
}

// memMessages is an in-memory repository.MessageRepository. Unread bumping is
// applied to the linked conversation store when one is attached.
type memMessages struct {
	convs  *memConversations
	saved  []support.Message
	media  []support.MessageMedia
	bumps  []bool
	nextID int64
}

func (m *memMessages) SaveMessage(_ context.Context, msg support.Message, media *support.MessageMedia, bumpUnread bool) (*support.Message, *support.MessageMedia, error) {
	m.nextID++
	msg.ID = m.nextID
	var savedMedia *support.MessageMedia
	if media != nil {
		stored := *media
		stored.ID = msg.ID
		msg.MediaID = &stored.ID
		m.media = append(m.media, stored)
		savedMedia = &stored
	}
	m.saved = append(m.saved, msg)
	m.bumps = append(m.bumps, bumpUnread)
	if m.convs != nil {
		if c, ok := m.convs.convs[msg.ConversationID]; ok {
			c.LastMessage = msg.Content
			c.UpdatedAt = msg.CreatedAt
			if bumpUnread {
				c.UnreadCount++
			}
		}
	}
	out := msg
	return &out, savedMedia, nil
}

func (m *memMessages) ListConversationMessages(_ context.Context, conversationID int64) ([]support.MessageView, error) {
	var out []support.MessageView
	for _, msg := range m.saved {
		if msg.ConversationID == conversationID {
			out = append(out, support.MessageView{
				ID:        msg.ID,
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
				Sender:    msg.Sender,
			})
		}
	}
	return out, nil
}

func (m *memMessages) DeleteMessage(_ context.Context, id int64) error {
	for i, msg := range m.saved {
		if msg.ID == id {
			m.saved = append(m.saved[:i], m.saved[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memMessages) CountAgentMessages(_ context.Context, conversationID int64) (int, error) {
	n := 0
	for _, msg := range m.saved {
		if msg.ConversationID == conversationID && msg.Sender == support.SenderAgent {
			n++
		}
	}
	return n, nil
}

// memTemplates is an in-memory repository.TemplateRepository.
type memTemplates struct {
	templates map[int64]*support.Template
	nextID    int64
}

func newMemTemplates() *memTemplates {
	return &memTemplates{templates: make(map[int64]*support.Template)}
}

func (m *memTemplates) add(userID *int64, content string, active bool) *support.Template {
	m.nextID++
	t := &support.Template{ID: m.nextID, UserID: userID, Content: content, Active: active}
	m.templates[t.ID] = t
	return t
}

func (m *memTemplates) GetTemplate(_ context.Context, id int64) (*support.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *memTemplates) list(match func(*support.Template) bool) []support.Template {
	var out []support.Template
	for _, t := range m.templates {
		if t.Active && match(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memTemplates) ListDefaultTemplates(context.Context) ([]support.Template, error) {
	return m.list(func(t *support.Template) bool { return t.UserID == nil }), nil
}

func (m *memTemplates) ListUserTemplates(_ context.Context, userID int64) ([]support.Template, error) {
	return m.list(func(t *support.Template) bool { return t.UserID != nil && *t.UserID == userID }), nil
}

func (m *memTemplates) CreateTemplate(_ context.Context, t support.Template) (*support.Template, error) {
	out := *m.add(t.UserID, t.Content, true)
	return &out, nil
}

func (m *memTemplates) UpdateTemplate(_ context.Context, id int64, content string, active *bool) (*support.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Content = content
	if active != nil {
		t.Active = *active
	}
	out := *t
	return &out, nil
}

func (m *memTemplates) DeleteTemplate(_ context.Context, id int64) error {
	if _, ok := m.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

// recordedNotification is one PublishNotification call.
type recordedNotification struct {
	UserID int64
	Event  support.Notification
}

// recordedMessage is one PublishMessage call.
type recordedMessage struct {
	ConversationID int64
	Data           support.MessageData
}

// recorderEvents captures published events instead of fanning them out.
type recorderEvents struct {
	notifications []recordedNotification
	messages      []recordedMessage
}

func (r *recorderEvents) PublishNotification(_ context.Context, userID int64, n support.Notification) error {
	r.notifications = append(r.notifications, recordedNotification{UserID: userID, Event: n})
	return nil
}

func (r *recorderEvents) PublishMessage(_ context.Context, conversationID int64, md support.MessageData) error {
	r.messages = append(r.messages, recordedMessage{ConversationID: conversationID, Data: md})
	return nil
}

func (r *recorderEvents) notifiedUsers() []int64 {
	var out []int64
	for _, n := range r.notifications {
		out = append(out, n.UserID)
	}
	return out
}

// sentCustomerMessage is one outbound customer-channel message.
type sentCustomerMessage struct {
	ToNumber   string
	Body       string
	SenderName string
}

// fakeCustomer captures customer-channel calls and optionally fails sends.
type fakeCustomer struct {
	sendErr       error
	sent          []sentCustomerMessage
	assignedCalls []string
	endedCalls    []string
}

func (f *fakeCustomer) SendMessage(_ context.Context, toNumber, body string, _ *nport.OutboundMedia, senderName string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentCustomerMessage{ToNumber: toNumber, Body: body, SenderName: senderName})
	return nil
}

func (f *fakeCustomer) NotifyAgentAssigned(_ context.Context, toNumber, agentName string) error {
	f.assignedCalls = append(f.assignedCalls, agentName)
	return nil
}

func (f *fakeCustomer) NotifyConversationEnded(_ context.Context, _ string, _ string, agentName string) error {
	f.endedCalls = append(f.endedCalls, agentName)
	return nil
}

// fakeWatcher reports a fixed set of (conversation, user) pairs as watching.
type fakeWatcher struct {
	watching map[int64]int64
}

func (f *fakeWatcher) Watching(conversationID, userID int64) bool {
	return f.watching != nil && f.watching[conversationID] == userID
}

// enqueuedTask is one Enqueue call with its option.
type enqueuedTask struct {
	Task qport.Task
	Opt  qport.EnqueueOption
}

// fakeQueue captures enqueued tasks.
type fakeQueue struct {
	tasks []enqueuedTask
}

func (f *fakeQueue) Enqueue(_ context.Context, t qport.Task, opts ...qport.EnqueueOption) (string, error) {
	var opt qport.EnqueueOption
	if len(opts) > 0 {
		opt = opts[0]
	}
	f.tasks = append(f.tasks, enqueuedTask{Task: t, Opt: opt})
	return "task-id", nil
}

func (f *fakeQueue) Close() error { return nil }
