package forms

type Login struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (Login) messages() messages {
	return messages{
		"email.required":    "Please fill all fields",
		"password.required": "Please fill all fields",
	}
}

type Register struct {
	FirstName       string `form:"firstName" validate:"required"`
	LastName        string `form:"lastName" validate:"required"`
	Email           string `form:"email" validate:"required,emailaddr"`
	Password        string `form:"password" validate:"required,min=8,password"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

func (Register) messages() messages {
	return messages{
		"firstName.required":       "First name is required.",
		"lastName.required":        "Last name is required.",
		"email.required":           "Email is required.",
		"email.emailaddr":          "Enter a valid email.",
		"password.required":        "Password is required.",
		"password.min":             "Password must be at least 8 characters.",
		"password.password":        "Include letters and numbers.",
		"confirmPassword.required": "Confirm password is required.",
		"confirmPassword.eqfield":  "Passwords do not match.",
	}
}

type ForgotPassword struct {
	Email string `form:"email" validate:"required,emailaddr"`
}

func (ForgotPassword) messages() messages {
	return messages{
		"email.required":  "Email is required",
		"email.emailaddr": "Enter a valid email",
	}
}

type ResetPassword struct {
	Email       string `form:"email" validate:"required,emailaddr"`
	Code        string `form:"code" validate:"required"`
	NewPassword string `form:"newPassword" validate:"required,min=8,password"`
}

func (ResetPassword) messages() messages {
	return messages{
		"email.required":       "Email is required",
		"email.emailaddr":      "Enter a valid email",
		"code.required":        "Reset code is required",
		"newPassword.required": "New password is required",
		"newPassword.min":      "Password must be at least 8 characters",
		"newPassword.password": "Password must contain at least one letter and one number",
	}
}

type Profile struct {
	FirstName string `form:"firstName" validate:"required"`
	LastName  string `form:"lastName" validate:"required"`
	Email     string `form:"email" validate:"required"`
}

func (Profile) messages() messages {
	return messages{
		"firstName.required": "First name is required.",
		"lastName.required":  "Last name is required.",
		"email.required":     "Email is required.",
	}
}
