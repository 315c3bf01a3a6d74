package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rabbitz-io/rabbit/internal/constants"
	"github.com/rabbitz-io/rabbit/internal/http"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UsersClient implements rabbit.UsersClient.
type UsersClient struct {
	httpClient *http.Client
	perPage    int
}

// NewUsersClient creates a new users client.
func NewUsersClient(httpClient *http.Client, perPage int) *UsersClient {
	if perPage <= 0 {
		perPage = constants.DefaultPerPage
	}

	return &UsersClient{
		httpClient: httpClient,
		perPage:    perPage,
	}
}

func (c *UsersClient) listParams(opts *rabbit.ListUsersOptions) *rabbit.QueryParams {
	params := rabbit.NewQueryParams().
		WithPage(1).
		WithPerPage(c.perPage)

	if opts == nil {
		return params
	}

	if opts.Page != 0 {
		params.WithPage(opts.Page)
	}

	if opts.PerPage != 0 {
		params.WithPerPage(opts.PerPage)
	}

	params.WithOrderBy(opts.OrderBy).
		WithSort(opts.Sort).
		WithSearch(opts.Search)

	if opts.Active {
		params.WithParam("active", true)
	}

	if opts.Blocked {
		params.WithParam("blocked", true)
	}

	if opts.Username != "" {
		params.WithParam("username", opts.Username)
	}

	if opts.Provider != "" {
		params.WithParam("provider", opts.Provider)
	}

	if opts.ExternUID != "" {
		params.WithParam("extern_uid", opts.ExternUID)
	}

	if opts.WithCustomAttributes {
		params.WithParam("with_custom_attributes", true)
	}

	return params
}

// List implements rabbit.UsersClient.List.
func (c *UsersClient) List(ctx context.Context, opts *rabbit.ListUsersOptions) ([]rabbit.User, error) {
	params := c.listParams(opts)
	if params.Page < 1 || params.PerPage < 1 {
		return nil, rabbit.InvalidArgumentf("page and per_page must be positive, got page=%d per_page=%d",
			params.Page, params.PerPage)
	}

	resp, err := c.httpClient.Get(ctx, "/users", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var users []rabbit.User

	err = http.DecodeJSON(resp, &users)
	if err != nil {
		return nil, fmt.Errorf("parsing users list: %w", err)
	}

	return users, nil
}

// ListAll implements rabbit.UsersClient.ListAll.
func (c *UsersClient) ListAll(ctx context.Context, opts *rabbit.ListUsersOptions) ([]rabbit.User, error) {
	return rabbit.FetchAllPages[rabbit.User](ctx, c.httpClient, "/users", c.listParams(opts), nil)
}

// Pager implements rabbit.UsersClient.Pager.
func (c *UsersClient) Pager(ctx context.Context, opts *rabbit.ListUsersOptions) (*rabbit.Pager[rabbit.User], error) {
	return rabbit.NewPager[rabbit.User](ctx, c.httpClient, "/users", c.listParams(opts))
}

// Stream implements rabbit.UsersClient.Stream.
func (c *UsersClient) Stream(ctx context.Context, opts *rabbit.ListUsersOptions) <-chan rabbit.PageResult[rabbit.User] {
	return rabbit.StreamPages[rabbit.User](ctx, c.httpClient, "/users", c.listParams(opts), nil)
}

// Get implements rabbit.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, userID int64) (*rabbit.User, error) {
	if userID <= 0 {
		return nil, rabbit.InvalidArgumentf("user ID must be positive, got %d", userID)
	}

	resp, err := c.httpClient.Get(ctx, "/users/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	var user rabbit.User

	err = http.DecodeJSON(resp, &user)
	if err != nil {
		return nil, fmt.Errorf("parsing user: %w", err)
	}

	return &user, nil
}

// lookupOne fetches the first user matching a one-row filtered listing.
func (c *UsersClient) lookupOne(ctx context.Context, params *rabbit.QueryParams, what string) (*rabbit.User, error) {
	params.WithPage(1).WithPerPage(1)

	resp, err := c.httpClient.Get(ctx, "/users", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	var users []rabbit.User

	err = http.DecodeJSON(resp, &users)
	if err != nil {
		return nil, fmt.Errorf("parsing user lookup: %w", err)
	}

	if len(users) == 0 {
		return nil, rabbit.NewNotFoundError("no user found for " + what)
	}

	return &users[0], nil
}

// GetByUsername implements rabbit.UsersClient.GetByUsername.
func (c *UsersClient) GetByUsername(ctx context.Context, username string) (*rabbit.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, rabbit.InvalidArgumentf("username is required")
	}

	params := rabbit.NewQueryParams().WithParam("username", username)

	return c.lookupOne(ctx, params, "username "+username)
}

// GetByEmail implements rabbit.UsersClient.GetByEmail. The address is
// validated client-side before any request is sent.
func (c *UsersClient) GetByEmail(ctx context.Context, email string) (*rabbit.User, error) {
	if !emailPattern.MatchString(email) {
		return nil, rabbit.NewInvalidArgumentError(rabbit.ErrInvalidEmail)
	}

	params := rabbit.NewQueryParams().WithSearch(email)

	return c.lookupOne(ctx, params, "email "+email)
}

// GetByExternalUID implements rabbit.UsersClient.GetByExternalUID.
func (c *UsersClient) GetByExternalUID(ctx context.Context, provider, externUID string) (*rabbit.User, error) {
	if provider == "" || externUID == "" {
		return nil, rabbit.InvalidArgumentf("provider and extern_uid are required")
	}

	params := rabbit.NewQueryParams().
		WithParam("provider", provider).
		WithParam("extern_uid", externUID)

	return c.lookupOne(ctx, params, "provider "+provider+" uid "+externUID)
}

// Find implements rabbit.UsersClient.Find.
func (c *UsersClient) Find(ctx context.Context, search string, page, perPage int) ([]rabbit.User, error) {
	if page < 1 || perPage < 1 {
		return nil, rabbit.InvalidArgumentf("page and per_page must be positive, got page=%d per_page=%d",
			page, perPage)
	}

	params := rabbit.NewQueryParams().
		WithSearch(search).
		WithPage(page).
		WithPerPage(perPage)

	resp, err := c.httpClient.Get(ctx, "/users", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("finding users: %w", err)
	}

	var users []rabbit.User

	err = http.DecodeJSON(resp, &users)
	if err != nil {
		return nil, fmt.Errorf("parsing users search: %w", err)
	}

	return users, nil
}

func userResult(user *rabbit.User, err error) rabbit.Result[*rabbit.User] {
	switch {
	case err == nil:
		return rabbit.OK(user)
	case rabbit.IsNotFound(err):
		return rabbit.NotFoundResult[*rabbit.User](err)
	default:
		return rabbit.FailedResult[*rabbit.User](err)
	}
}

// GetResult implements rabbit.UsersClient.GetResult.
func (c *UsersClient) GetResult(ctx context.Context, userID int64) rabbit.Result[*rabbit.User] {
	return userResult(c.Get(ctx, userID))
}

// GetByUsernameResult implements rabbit.UsersClient.GetByUsernameResult.
func (c *UsersClient) GetByUsernameResult(ctx context.Context, username string) rabbit.Result[*rabbit.User] {
	return userResult(c.GetByUsername(ctx, username))
}

// GetByEmailResult implements rabbit.UsersClient.GetByEmailResult.
func (c *UsersClient) GetByEmailResult(ctx context.Context, email string) rabbit.Result[*rabbit.User] {
	return userResult(c.GetByEmail(ctx, email))
}

// GetByExternalUIDResult implements rabbit.UsersClient.GetByExternalUIDResult.
func (c *UsersClient) GetByExternalUIDResult(ctx context.Context, provider, externUID string) rabbit.Result[*rabbit.User] {
	return userResult(c.GetByExternalUID(ctx, provider, externUID))
}

// buildUserForm maps a User onto the form fields the server accepts. On
// create, email, username, and name are required, and either a password or
// the reset flag must be provided.
func buildUserForm(user *rabbit.User, password string, resetPassword, create bool) (url.Values, error) {
	if user == nil {
		return nil, rabbit.InvalidArgumentf("user is required")
	}

	if create {
		if strings.TrimSpace(password) == "" && !resetPassword {
			return nil, rabbit.NewInvalidArgumentError(rabbit.ErrPasswordRequired)
		}

		if user.Email == "" || user.Username == "" || user.Name == "" {
			return nil, rabbit.InvalidArgumentf("email, username, and name are required to create a user")
		}
	}

	form := url.Values{}

	setForm := func(key, value string) {
		if value != "" {
			form.Set(key, value)
		}
	}

	setForm("email", user.Email)
	setForm("password", password)

	if resetPassword {
		form.Set("reset_password", "true")
	}

	setForm("username", user.Username)
	setForm("name", user.Name)
	setForm("skype", user.Skype)
	setForm("linkedin", user.Linkedin)
	setForm("twitter", user.Twitter)
	setForm("website_url", user.WebsiteURL)
	setForm("organization", user.Organization)
	setForm("extern_uid", user.ExternUID)
	setForm("provider", user.Provider)
	setForm("bio", user.Bio)
	setForm("location", user.Location)

	if user.ProjectsLimit > 0 {
		form.Set("projects_limit", strconv.Itoa(user.ProjectsLimit))
	}

	if user.RunnerMinutes > 0 {
		form.Set("shared_runners_minutes_limit", strconv.Itoa(user.RunnerMinutes))
	}

	if user.IsAdmin {
		form.Set("admin", "true")
	}

	if user.CanCreateGroup {
		form.Set("can_create_group", "true")
	}

	if user.SkipConfirmation {
		// Creation and update use different names for the same toggle.
		if create {
			form.Set("skip_confirmation", "true")
		} else {
			form.Set("skip_reconfirmation", "true")
		}
	}

	if user.External {
		form.Set("external", "true")
	}

	return form, nil
}

// Create implements rabbit.UsersClient.Create.
func (c *UsersClient) Create(ctx context.Context, user *rabbit.User, password string, resetPassword bool) (*rabbit.User, error) {
	form, err := buildUserForm(user, password, resetPassword, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/users", form)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	var created rabbit.User

	err = http.DecodeJSON(resp, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing created user: %w", err)
	}

	return &created, nil
}

// Update implements rabbit.UsersClient.Update.
func (c *UsersClient) Update(ctx context.Context, user *rabbit.User, password string) (*rabbit.User, error) {
	if user == nil || user.ID <= 0 {
		return nil, rabbit.InvalidArgumentf("user with a positive ID is required")
	}

	form, err := buildUserForm(user, password, false, false)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Put(ctx, "/users/"+strconv.FormatInt(user.ID, 10), form)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	var updated rabbit.User

	err = http.DecodeJSON(resp, &updated)
	if err != nil {
		return nil, fmt.Errorf("parsing updated user: %w", err)
	}

	return &updated, nil
}

// SetAvatar implements rabbit.UsersClient.SetAvatar. The image is sent as a
// multipart "avatar" field on the user update endpoint.
func (c *UsersClient) SetAvatar(ctx context.Context, ref rabbit.UserRef, fileName string, avatar io.Reader) (*rabbit.User, error) {
	if avatar == nil {
		return nil, rabbit.InvalidArgumentf("avatar content is required")
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.PutMultipart(ctx, "/users/"+segment, "avatar", fileName, avatar)
	if err != nil {
		return nil, fmt.Errorf("setting user avatar: %w", err)
	}

	var updated rabbit.User

	err = http.DecodeJSON(resp, &updated)
	if err != nil {
		return nil, fmt.Errorf("parsing avatar response: %w", err)
	}

	return &updated, nil
}

// Delete implements rabbit.UsersClient.Delete.
func (c *UsersClient) Delete(ctx context.Context, ref rabbit.UserRef, hardDelete bool) error {
	segment, err := ref.PathSegment()
	if err != nil {
		return err
	}

	var form url.Values
	if hardDelete {
		form = url.Values{"hard_delete": []string{"true"}}
	}

	_, err = c.httpClient.Delete(ctx, "/users/"+segment, form)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

// Block implements rabbit.UsersClient.Block.
func (c *UsersClient) Block(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return rabbit.InvalidArgumentf("user ID must be positive, got %d", userID)
	}

	_, err := c.httpClient.Post(ctx, "/users/"+strconv.FormatInt(userID, 10)+"/block", nil)
	if err != nil {
		return fmt.Errorf("blocking user: %w", err)
	}

	return nil
}

// Unblock implements rabbit.UsersClient.Unblock.
func (c *UsersClient) Unblock(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return rabbit.InvalidArgumentf("user ID must be positive, got %d", userID)
	}

	_, err := c.httpClient.Post(ctx, "/users/"+strconv.FormatInt(userID, 10)+"/unblock", nil)
	if err != nil {
		return fmt.Errorf("unblocking user: %w", err)
	}

	return nil
}

// Current implements rabbit.UsersClient.Current.
func (c *UsersClient) Current(ctx context.Context) (*rabbit.User, error) {
	resp, err := c.httpClient.Get(ctx, "/user", nil)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	var user rabbit.User

	err = http.DecodeJSON(resp, &user)
	if err != nil {
		return nil, fmt.Errorf("parsing current user: %w", err)
	}

	return &user, nil
}
