package i18n

var messagesEN = map[string]string{
	// ========== Lexer ==========
	ErrUnexpectedChar:     "Unexpected character: %c",
	ErrUnterminatedString: "Unterminated string.",

	// ========== Parser ==========
	ErrExpectedExpression:  "Expect expression.",
	ErrInvalidAssignTarget: "Invalid assignment target.",
	ErrTooManyArgs:         "Cannot have more than 255 arguments.",
	ErrTooManyParams:       "Cannot have more than 255 parameters.",

	// ========== Resolver ==========
	ErrAlreadyDeclared:   "Variable with this name already declared in this scope.",
	ErrReadInInitializer: "Can't read local variable in its own initializer.",
	ErrReturnTopLevel:    "Cannot return from top-level code.",
	ErrReturnFromInit:    "Cannot return a value from an initializer.",
	ErrThisOutsideClass:  "Cannot use 'this' outside of a class.",
	ErrSuperOutsideClass: "Cannot use 'super' outside of a class.",
	ErrSuperNoSuperclass: "Cannot use 'super' in a class with no superclass.",
	ErrInheritSelf:       "A class cannot inherit from itself.",

	// ========== Runtime ==========
	ErrUndefinedVariable:  "Undefined variable '%s'.",
	ErrUndefinedProperty:  "Undefined property '%s'.",
	ErrOnlyInstances:      "Only instances have properties.",
	ErrNotCallable:        "Can only call functions and classes.",
	ErrArityMismatch:      "Expected %d arguments but got %d.",
	ErrSuperclassNotClass: "Superclass must be a class.",
	ErrUnaryMinusNil:      "Unary minus on nil is not supported.",
	ErrOperandNumber:      "Operand must be a number.",
	ErrOperandsNumbers:    "Operands must be numbers.",
	ErrPlusOperands:       "Operands must be two numbers or two strings.",
}
