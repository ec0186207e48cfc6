package services

// RegisterInput is the registration payload. Role defaults to Guest.
type RegisterInput struct {
	Email     string  `json:"email" validate:"required,email_shape"`
	Username  string  `json:"username" validate:"required,min=3,max=100,username_format"`
	Password  string  `json:"password" validate:"required,max=72,password_strength"`
	FirstName *string `json:"first_name" validate:"omitnil,max=100"`
	LastName  *string `json:"last_name" validate:"omitnil,max=100"`
	Role      string  `json:"role" validate:"omitempty,oneof=Guest Listener Artist"`
}

// LoginInput accepts either an email or a username as the identifier.
type LoginInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (in LoginInput) identifier() string {
	if in.Email != "" {
		return in.Email
	}
	return in.Username
}

type credentials struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput carries the profile fields to change; nil means keep.
type UpdateProfileInput struct {
	Email     *string `json:"email" validate:"omitnil,email_shape"`
	Username  *string `json:"username" validate:"omitnil,min=3,max=100,username_format"`
	FirstName *string `json:"first_name" validate:"omitnil,max=100"`
	LastName  *string `json:"last_name" validate:"omitnil,max=100"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=72,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type ChangeRoleInput struct {
	NewRole string `json:"new_role" validate:"required,oneof=Listener Artist"`
}

type ListenerPreferencesInput struct {
	Preference    *string `json:"preference" validate:"omitnil,max=500"`
	FavoriteGenre *string `json:"favorite_genre" validate:"omitnil,max=100"`
}

type ArtistProfileInput struct {
	Genre *string `json:"genre" validate:"omitnil,max=100"`
}

type PurchaseInput struct {
	PlanID int64 `json:"plan_id" validate:"required,gt=0"`
}

type RecordPlayInput struct {
	TrackRef       string `json:"track_ref" validate:"required,max=255"`
	ListenDuration *int   `json:"listen_duration" validate:"required,gte=0,lte=86400"`
}

type ReactInput struct {
	Type         string `json:"type" validate:"required,oneof=Song Artwork"`
	ReactableRef string `json:"reactable_ref" validate:"required,max=255"`
	Emotion      string `json:"emotion" validate:"required,max=32"`
}
