package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/gateway"
)

// fakeBotAPI answers the handful of Bot API methods the gateway uses.
type fakeBotAPI struct {
	mu       sync.Mutex
	sent     []url.Values
	answered []string
	fileSize int
	fileBody []byte
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = r.ParseForm()

	switch {
	case strings.HasPrefix(r.URL.Path, "/file/"):
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(f.fileBody)
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Participium","username":"ParticipiumBot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.mu.Lock()
		f.sent = append(f.sent, r.PostForm)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":5,"type":"private"}}}`))
	case strings.HasSuffix(r.URL.Path, "/answerCallbackQuery"):
		f.mu.Lock()
		f.answered = append(f.answered, r.PostForm.Get("callback_query_id"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	case strings.HasSuffix(r.URL.Path, "/getFile"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"f1","file_unique_id":"u1","file_size":` +
			strconv.Itoa(f.fileSize) + `,"file_path":"photos/f1.jpg"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
	}
}

var _ = Describe("Telegram", func() {
	var (
		ctx    context.Context
		api    *fakeBotAPI
		server *httptest.Server
		tg     *gateway.Telegram
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = &fakeBotAPI{fileBody: []byte("\xff\xd8\xff\xe0photo"), fileSize: 9}
		server = httptest.NewServer(api)

		var err error
		tg, err = gateway.New("TOKEN", gateway.Options{
			APIEndpoint:  server.URL + "/bot%s/%s",
			FileEndpoint: server.URL + "/file/bot%s/%s",
			HTTPClient:   server.Client(),
			MaxFileBytes: 16,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("reads the bot identity on start", func() {
		Expect(tg.Username()).To(Equal("ParticipiumBot"))
	})

	It("sends a one-shot location keyboard", func() {
		err := tg.Send(ctx, 5, chat.Message{
			Text: "Where?",
			ReplyKeyboard: &chat.ReplyKeyboard{
				Buttons: []chat.ReplyButton{{Text: "Send location", RequestLocation: true}},
			},
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(api.sent).To(HaveLen(1))
		Expect(api.sent[0].Get("chat_id")).To(Equal("5"))
		Expect(api.sent[0].Get("text")).To(Equal("Where?"))
		markup := api.sent[0].Get("reply_markup")
		Expect(markup).To(ContainSubstring(`"request_location":true`))
		Expect(markup).To(ContainSubstring(`"one_time_keyboard":true`))
	})

	It("encodes inline buttons as callback data", func() {
		err := tg.Send(ctx, 5, chat.Message{
			Text: "Confirm?",
			InlineKeyboard: [][]chat.Button{{
				{Label: "Yes", Action: chat.ConfirmChoice{Confirm: true}},
				{Label: "No", Action: chat.ConfirmChoice{Confirm: false}},
			}},
		})
		Expect(err).NotTo(HaveOccurred())
		markup := api.sent[0].Get("reply_markup")
		Expect(markup).To(ContainSubstring(`"callback_data":"confirm:yes"`))
		Expect(markup).To(ContainSubstring(`"callback_data":"confirm:no"`))
	})

	It("removes stale reply keyboards", func() {
		Expect(tg.Send(ctx, 5, chat.Message{Text: "ok", RemoveKeyboard: true})).To(Succeed())
		Expect(api.sent[0].Get("reply_markup")).To(ContainSubstring(`"remove_keyboard":true`))
	})

	It("answers callback queries", func() {
		Expect(tg.AnswerCallback(ctx, "cb-1")).To(Succeed())
		Expect(api.answered).To(Equal([]string{"cb-1"}))
	})

	It("downloads files", func() {
		data, err := tg.FetchFile(ctx, "f1")
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(api.fileBody))
	})

	It("refuses files above the size cap", func() {
		api.fileSize = 1 << 20
		_, err := tg.FetchFile(ctx, "f1")
		Expect(err).To(MatchError(gateway.ErrFileTooLarge))
	})

	It("refuses bodies above the size cap when the size was not announced", func() {
		api.fileSize = 0
		api.fileBody = []byte(strings.Repeat("x", 64))
		_, err := tg.FetchFile(ctx, "f1")
		Expect(err).To(MatchError(gateway.ErrFileTooLarge))
	})
})
