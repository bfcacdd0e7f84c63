// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package httpapi_test

import (
	"context"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

var _ = Describe("Administrator session", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture(GinkgoT(), nil)
	})

	It("logs in, identifies and reaches every gated resource", func() {
		login := f.login("admin", "Admin@123")
		Expect(login.status).To(Equal(http.StatusOK))

		user := login.body["user"].(map[string]any)
		Expect(user).To(HaveKeyWithValue("username", "admin"))
		Expect(user).To(HaveKeyWithValue("role", "administrator"))

		token := login.body["token"].(string)
		Expect(strings.Split(token, ".")).To(HaveLen(3))

		me := f.do(http.MethodGet, "/api/auth/me", token, nil)
		Expect(me.status).To(Equal(http.StatusOK))
		Expect(me.body["user"]).To(Equal(user))

		for _, path := range []string{"/api/resources", "/api/resources/edit", "/api/admin"} {
			resp := f.do(http.MethodGet, path, token, nil)
			Expect(resp.status).To(Equal(http.StatusOK), path)
		}
	})
})

var _ = Describe("Registration", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture(GinkgoT(), nil)
	})

	When("the username is taken", func() {
		It("is rejected and the store does not grow", func() {
			before, err := f.users.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())

			resp := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
				"username": "viewer",
				"password": "Viewer@123",
			})
			Expect(resp.status).To(Equal(http.StatusBadRequest))
			Expect(resp.body).To(HaveKeyWithValue("message", "Username already exists"))

			after, err := f.users.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before))
		})
	})

	When("the password is weak", func() {
		It("reports each failed rule", func() {
			resp := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
				"username": "fresh",
				"password": "password",
			})
			Expect(resp.status).To(Equal(http.StatusBadRequest))
			Expect(resp.body["violations"]).To(HaveLen(3))
		})
	})

	When("the registration succeeds", func() {
		It("grows the store by exactly one and grants viewer access only", func() {
			before, err := f.users.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())

			resp := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
				"username": "fresh",
				"password": "Fresh@1234",
			})
			Expect(resp.status).To(Equal(http.StatusCreated))

			after, err := f.users.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before + 1))

			token := resp.body["token"].(string)
			Expect(f.do(http.MethodGet, "/api/resources", token, nil).status).To(Equal(http.StatusOK))
			Expect(f.do(http.MethodGet, "/api/resources/edit", token, nil).status).To(Equal(http.StatusForbidden))
			Expect(f.do(http.MethodGet, "/api/admin", token, nil).status).To(Equal(http.StatusForbidden))
		})
	})
})

var _ = DescribeTable("Role matrix",
	func(username, password, path string, want int) {
		f := newFixture(GinkgoT(), nil)
		token := f.tokenFor(GinkgoT(), username, password)
		Expect(f.do(http.MethodGet, path, token, nil).status).To(Equal(want))
	},
	Entry("viewer reads resources", "viewer", "Viewer@123", "/api/resources", http.StatusOK),
	Entry("viewer cannot edit", "viewer", "Viewer@123", "/api/resources/edit", http.StatusForbidden),
	Entry("editor edits", "editor", "Editor@123", "/api/resources/edit", http.StatusOK),
	Entry("editor cannot administer", "editor", "Editor@123", "/api/admin", http.StatusForbidden),
	Entry("administrator administers", "admin", "Admin@123", "/api/admin", http.StatusOK),
)
