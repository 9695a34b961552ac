package bot_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lucaprinsss/Participium-sub003/internal/bot"
	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/dedupe"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/store"
	"github.com/lucaprinsss/Participium-sub003/internal/wizard"
)

var _ = Describe("Dispatcher", func() {
	const chatID int64 = 5

	var (
		ctx        context.Context
		wiz        *mockWizard
		accounts   *mockAccounts
		gw         *mockGateway
		dispatcher *bot.Dispatcher
		nextID     int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		wiz = &mockWizard{sessions: map[int64]bool{}}
		accounts = &mockAccounts{}
		gw = &mockGateway{}
		dd := dedupe.NewMemory(128, time.Minute)
		dispatcher = bot.NewDispatcher(bot.Config{CallTimeout: time.Second}, bot.Deps{
			Wizard:   wiz,
			Accounts: accounts,
			Gateway:  gw,
			Dedupe:   dd,
		})
		nextID = 0
	})

	update := func(u chat.Update) chat.Update {
		nextID++
		u.ID = nextID
		u.ChatID = chatID
		if u.Sender == (chat.Sender{}) {
			u.Sender = chat.Sender{Username: "mario_rossi", TelegramID: 9}
		}
		return u
	}

	command := func(name, args string) chat.Update {
		return update(chat.Update{Kind: chat.UpdateCommand, Command: name, Args: args})
	}

	Describe("commands", func() {
		It("starts the wizard on /start", func() {
			Expect(dispatcher.Handle(ctx, command("start", ""))).To(Succeed())
			Expect(wiz.recorded()).To(Equal([]call{{method: "Start"}}))
		})

		It("answers /help and /info without touching sessions", func() {
			Expect(dispatcher.Handle(ctx, command("help", ""))).To(Succeed())
			Expect(dispatcher.Handle(ctx, command("info", ""))).To(Succeed())
			Expect(gw.texts()).To(Equal([]string{bot.MsgHelp, bot.MsgInfo}))
			Expect(wiz.recorded()).To(BeEmpty())
		})

		It("cancels on /cancel", func() {
			Expect(dispatcher.Handle(ctx, command("cancel", ""))).To(Succeed())
			Expect(wiz.recorded()).To(Equal([]call{{method: "Cancel"}}))
		})

		It("forwards /done to the wizard while a report is open", func() {
			wiz.sessions[chatID] = true
			Expect(dispatcher.Handle(ctx, command("done", ""))).To(Succeed())
			Expect(wiz.recorded()).To(Equal([]call{{method: "HandleText", arg: "/done"}}))
		})

		It("replies to unknown commands", func() {
			Expect(dispatcher.Handle(ctx, command("frobnicate", ""))).To(Succeed())
			Expect(gw.texts()).To(Equal([]string{bot.MsgUnknownCommand}))
		})
	})

	Describe("/link", func() {
		DescribeTable("rejects malformed codes before calling the directory",
			func(args string) {
				Expect(dispatcher.Handle(ctx, command("link", args))).To(Succeed())
				Expect(gw.texts()).To(Equal([]string{bot.MsgLinkUsage}))
				Expect(accounts.links).To(Equal(0))
			},
			Entry("missing", ""),
			Entry("too short", "12345"),
			Entry("too long", "1234567"),
			Entry("letters", "12a456"),
			Entry("two codes", "123456 654321"),
		)

		It("links with a valid code", func() {
			accounts.linkFn = func(_ context.Context, username, code string) (model.LinkResult, error) {
				Expect(username).To(Equal("mario_rossi"))
				Expect(code).To(Equal("123456"))
				return model.LinkResult{Success: true, Message: "Linked."}, nil
			}
			Expect(dispatcher.Handle(ctx, command("link", "123456"))).To(Succeed())
			Expect(gw.texts()).To(Equal([]string{"✅ Linked."}))
		})

		DescribeTable("explains code failures",
			func(err error, want string) {
				accounts.linkFn = func(context.Context, string, string) (model.LinkResult, error) {
					return model.LinkResult{}, err
				}
				Expect(dispatcher.Handle(ctx, command("link", "123456"))).To(Succeed())
				Expect(gw.texts()).To(Equal([]string{want}))
			},
			Entry("invalid", store.ErrInvalidCode, bot.MsgLinkInvalid),
			Entry("expired", store.ErrCodeExpired, bot.MsgLinkExpired),
			Entry("used", store.ErrCodeUsed, bot.MsgLinkUsed),
			Entry("database down", errors.New("connection refused"), bot.MsgLinkFailed),
		)

		It("needs a Telegram username", func() {
			u := command("link", "123456")
			u.Sender = chat.Sender{TelegramID: 9}
			Expect(dispatcher.Handle(ctx, u)).To(Succeed())
			Expect(gw.texts()).To(Equal([]string{wizard.MsgNoUsername}))
			Expect(accounts.links).To(Equal(0))
		})
	})

	Describe("/unlink", func() {
		It("asks for confirmation first", func() {
			Expect(dispatcher.Handle(ctx, command("unlink", ""))).To(Succeed())
			msg := gw.last()
			Expect(msg.Text).To(Equal(bot.MsgUnlinkConfirm))
			Expect(msg.InlineKeyboard[0]).To(HaveLen(2))
			Expect(msg.InlineKeyboard[0][0].Action).To(Equal(chat.UnlinkChoice{Confirm: true}))
			Expect(accounts.unlinks).To(Equal(0))
		})

		It("unlinks on yes", func() {
			u := update(chat.Update{Kind: chat.UpdateButton, CallbackID: "cb", Action: chat.UnlinkChoice{Confirm: true}})
			Expect(dispatcher.Handle(ctx, u)).To(Succeed())
			Expect(accounts.unlinks).To(Equal(1))
			Expect(gw.answered).To(Equal([]string{"cb"}))
			Expect(gw.last().Text).To(HavePrefix("✅"))
		})

		It("keeps the link on no", func() {
			u := update(chat.Update{Kind: chat.UpdateButton, CallbackID: "cb", Action: chat.UnlinkChoice{Confirm: false}})
			Expect(dispatcher.Handle(ctx, u)).To(Succeed())
			Expect(accounts.unlinks).To(Equal(0))
			Expect(gw.texts()).To(Equal([]string{bot.MsgUnlinkKept}))
		})

		It("tells the caller when nothing was linked", func() {
			accounts.unlinkFn = func(context.Context, string) (model.LinkResult, error) {
				return model.LinkResult{}, store.ErrNotFound
			}
			u := update(chat.Update{Kind: chat.UpdateButton, Action: chat.UnlinkChoice{Confirm: true}})
			Expect(dispatcher.Handle(ctx, u)).To(Succeed())
			Expect(gw.texts()).To(Equal([]string{bot.MsgUnlinkNotLinked}))
		})
	})

	Describe("routing", func() {
		It("always hands locations to the wizard", func() {
			loc := model.Location{Latitude: 45.0703, Longitude: 7.6869}
			Expect(dispatcher.Handle(ctx, update(chat.Update{Kind: chat.UpdateLocation, Location: loc}))).To(Succeed())
			Expect(wiz.recorded()).To(Equal([]call{{method: "HandleLocation", arg: loc}}))
		})

		It("routes text, photos and buttons only when a report is open", func() {
			Expect(dispatcher.Handle(ctx, update(chat.Update{Kind: chat.UpdateText, Text: "hello"}))).To(Succeed())
			Expect(dispatcher.Handle(ctx, update(chat.Update{Kind: chat.UpdatePhoto, FileID: "f"}))).To(Succeed())
			Expect(dispatcher.Handle(ctx, update(chat.Update{Kind: chat.UpdateButton, CallbackID: "cb", Action: chat.PhotosDone{}}))).To(Succeed())
			Expect(wiz.recorded()).To(BeEmpty())
			Expect(gw.texts()).To(Equal([]string{bot.MsgNoSession}))
			Expect(gw.answered).To(Equal([]string{"cb"}))

			wiz.sessions[chatID] = true
			Expect(dispatcher.Handle(ctx, update(chat.Update{Kind: chat.UpdateText, Text: "Broken light"}))).To(Succeed())
			Expect(dispatcher.Handle(ctx, update(chat.Update{Kind: chat.UpdatePhoto, FileID: "f"}))).To(Succeed())
			Expect(dispatcher.Handle(ctx, update(chat.Update{Kind: chat.UpdateButton, Action: chat.PhotosDone{}}))).To(Succeed())
			Expect(wiz.recorded()).To(Equal([]call{
				{method: "HandleText", arg: "Broken light"},
				{method: "HandlePhoto", arg: "f"},
				{method: "HandleAction", arg: chat.PhotosDone{}},
			}))
		})

		It("acknowledges buttons with unknown data and does nothing else", func() {
			wiz.sessions[chatID] = true
			Expect(dispatcher.Handle(ctx, update(chat.Update{Kind: chat.UpdateButton, CallbackID: "cb"}))).To(Succeed())
			Expect(gw.answered).To(Equal([]string{"cb"}))
			Expect(wiz.recorded()).To(BeEmpty())
		})

		It("skips redelivered updates", func() {
			u := command("start", "")
			Expect(dispatcher.Handle(ctx, u)).To(Succeed())
			Expect(dispatcher.Handle(ctx, u)).To(Succeed())
			Expect(wiz.recorded()).To(HaveLen(1))
		})
	})

	Describe("Dispatch", func() {
		It("processes different chats concurrently and waits for them on shutdown", func() {
			release := make(chan struct{})
			wiz.sessions[chatID] = true
			wiz.sessions[chatID+1] = true
			wiz.handleTextFn = func(_ context.Context, _ chat.Conversation, text string) (wizard.Outcome, error) {
				if text == "slow" {
					<-release
				}
				return wizard.Advanced, nil
			}

			other := update(chat.Update{Kind: chat.UpdateText, Text: "fast"})
			other.ChatID = chatID + 1
			Expect(dispatcher.Dispatch(ctx, update(chat.Update{Kind: chat.UpdateText, Text: "slow"}))).To(Succeed())
			Expect(dispatcher.Dispatch(ctx, other)).To(Succeed())

			Eventually(wiz.recorded).Should(HaveLen(2))

			shutdownDone := make(chan error, 1)
			go func() { shutdownDone <- dispatcher.Shutdown(context.Background()) }()
			Consistently(shutdownDone, 50*time.Millisecond).ShouldNot(Receive())

			close(release)
			Eventually(shutdownDone).Should(Receive(BeNil()))
			Expect(dispatcher.Dispatch(ctx, command("start", ""))).To(MatchError(bot.ErrShuttingDown))
		})

		It("queues a chat's updates behind the one being handled", func() {
			release := make(chan struct{})
			wiz.sessions[chatID] = true
			wiz.handleTextFn = func(_ context.Context, _ chat.Conversation, text string) (wizard.Outcome, error) {
				if text == "Broken light" {
					<-release
				}
				return wizard.Advanced, nil
			}

			Expect(dispatcher.Dispatch(ctx, update(chat.Update{Kind: chat.UpdateText, Text: "Broken light"}))).To(Succeed())
			Expect(dispatcher.Dispatch(ctx, update(chat.Update{Kind: chat.UpdateText, Text: "Lamp has been off for a week"}))).To(Succeed())

			Eventually(wiz.recorded).Should(HaveLen(1))
			Consistently(wiz.recorded, 50*time.Millisecond).Should(HaveLen(1))

			close(release)
			Expect(dispatcher.Shutdown(context.Background())).To(Succeed())
			Expect(wiz.recorded()).To(Equal([]call{
				{method: "HandleText", arg: "Broken light"},
				{method: "HandleText", arg: "Lamp has been off for a week"},
			}))
		})

		It("keeps delivery order within a chat when de-duplication is slow", func() {
			wiz.sessions[chatID] = true
			dispatcher = bot.NewDispatcher(bot.Config{CallTimeout: time.Second}, bot.Deps{
				Wizard:   wiz,
				Accounts: accounts,
				Gateway:  gw,
				Dedupe:   &jitteryDeduper{},
			})

			var want []call
			for i := 0; i < 50; i++ {
				text := fmt.Sprintf("message %d", i)
				want = append(want, call{method: "HandleText", arg: text})
				Expect(dispatcher.Dispatch(ctx, update(chat.Update{Kind: chat.UpdateText, Text: text}))).To(Succeed())
			}

			Expect(dispatcher.Shutdown(context.Background())).To(Succeed())
			Expect(wiz.recorded()).To(Equal(want))
		})

		It("does not let a cancelled request context abort the update", func() {
			reqCtx, cancel := context.WithCancel(ctx)
			var handlerErr error
			wiz.startFn = func(ctx context.Context, _ chat.Conversation) (wizard.Outcome, error) {
				handlerErr = ctx.Err()
				return wizard.Advanced, nil
			}
			cancel()

			Expect(dispatcher.Dispatch(reqCtx, command("start", ""))).To(Succeed())
			Expect(dispatcher.Shutdown(context.Background())).To(Succeed())
			Expect(wiz.recorded()).To(HaveLen(1))
			Expect(handlerErr).NotTo(HaveOccurred())
		})

		It("recovers from panics in handlers", func() {
			wiz.startFn = func(context.Context, chat.Conversation) (wizard.Outcome, error) {
				panic("boom")
			}

			Expect(dispatcher.Dispatch(ctx, command("start", ""))).To(Succeed())
			Expect(dispatcher.Dispatch(ctx, command("help", ""))).To(Succeed())
			Expect(dispatcher.Shutdown(context.Background())).To(Succeed())
			Expect(gw.texts()).To(ContainElement(bot.MsgHelp))
		})

		It("gives up waiting when the shutdown context expires", func() {
			release := make(chan struct{})
			defer close(release)
			wiz.startFn = func(context.Context, chat.Conversation) (wizard.Outcome, error) {
				<-release
				return wizard.Advanced, nil
			}
			Expect(dispatcher.Dispatch(ctx, command("start", ""))).To(Succeed())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			Expect(dispatcher.Shutdown(shutdownCtx)).To(MatchError(context.DeadlineExceeded))
		})
	})
})
