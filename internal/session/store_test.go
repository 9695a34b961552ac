package session_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/session"
)

var _ = Describe("Store", func() {
	var store *session.Store

	BeforeEach(func() {
		store = session.NewStore()
	})

	It("returns nothing for unknown chats", func() {
		_, ok := store.Get(1)
		Expect(ok).To(BeFalse())
		Expect(store.Len()).To(Equal(0))
	})

	It("stores, replaces and removes sessions", func() {
		store.Put(1, session.New(1, "mario", 10, time.Now()))
		Expect(store.Len()).To(Equal(1))

		replacement := session.New(1, "mario", 10, time.Now())
		replacement.Step = session.StepWaitingTitle
		store.Put(1, replacement)
		Expect(store.Len()).To(Equal(1))

		got, ok := store.Get(1)
		Expect(ok).To(BeTrue())
		Expect(got.Step).To(Equal(session.StepWaitingTitle))

		store.Remove(1)
		_, ok = store.Get(1)
		Expect(ok).To(BeFalse())
		Expect(store.Len()).To(Equal(0))
	})

	It("hands out copies from Get", func() {
		store.Put(1, session.New(1, "mario", 10, time.Now()))

		got, _ := store.Get(1)
		got.Draft.Title = "changed outside the store"
		got.Draft.Photos = append(got.Draft.Photos, model.Photo{DataURI: "data:x"})

		again, _ := store.Get(1)
		Expect(again.Draft.Title).To(BeEmpty())
		Expect(again.Draft.Photos).To(BeEmpty())
	})

	It("passes nil to Update when no session exists and keeps it absent", func() {
		var seen *session.Session
		called := false
		store.Update(7, func(cur *session.Session) *session.Session {
			called = true
			seen = cur
			return nil
		})
		Expect(called).To(BeTrue())
		Expect(seen).To(BeNil())
		Expect(store.Len()).To(Equal(0))
	})

	It("serializes read-modify-write cycles on the same chat", func() {
		store.Put(1, session.New(1, "mario", 10, time.Now()))

		const writers = 50
		var wg sync.WaitGroup
		wg.Add(writers)
		for i := 0; i < writers; i++ {
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				store.Update(1, func(cur *session.Session) *session.Session {
					n := len(cur.Draft.Photos)
					time.Sleep(time.Millisecond)
					cur.Draft.Photos = append(cur.Draft.Photos[:n:n], model.Photo{})
					return cur
				})
			}()
		}
		wg.Wait()

		got, _ := store.Get(1)
		Expect(got.Draft.Photos).To(HaveLen(writers))
	})

	It("does not block other chats while one chat is busy", func() {
		store.Put(1, session.New(1, "slow", 10, time.Now()))
		store.Put(2, session.New(2, "fast", 20, time.Now()))

		release := make(chan struct{})
		entered := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			store.Update(1, func(cur *session.Session) *session.Session {
				close(entered)
				<-release
				return cur
			})
		}()
		<-entered

		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			store.Update(2, func(cur *session.Session) *session.Session {
				cur.Draft.Title = "updated"
				return cur
			})
			close(done)
		}()

		Eventually(done).Should(BeClosed())
		close(release)

		got, _ := store.Get(2)
		Expect(got.Draft.Title).To(Equal("updated"))
	})
})
