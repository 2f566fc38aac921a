package i18n

// 消息 ID 常量
//
// 按产生错误的阶段分组。消息文本见 en.go / zh.go。
const (
	// ========== Lexer ==========
	ErrUnexpectedChar     = "lexer.unexpected_char"
	ErrUnterminatedString = "lexer.unterminated_string"

	// ========== Parser ==========
	ErrExpectedExpression  = "parser.expected_expression"
	ErrInvalidAssignTarget = "parser.invalid_assign_target"
	ErrTooManyArgs         = "parser.too_many_args"
	ErrTooManyParams       = "parser.too_many_params"

	// ========== Resolver ==========
	ErrAlreadyDeclared   = "resolver.already_declared"
	ErrReadInInitializer = "resolver.read_in_initializer"
	ErrReturnTopLevel    = "resolver.return_top_level"
	ErrReturnFromInit    = "resolver.return_from_init"
	ErrThisOutsideClass  = "resolver.this_outside_class"
	ErrSuperOutsideClass = "resolver.super_outside_class"
	ErrSuperNoSuperclass = "resolver.super_no_superclass"
	ErrInheritSelf       = "resolver.inherit_self"

	// ========== Runtime ==========
	ErrUndefinedVariable  = "runtime.undefined_variable"
	ErrUndefinedProperty  = "runtime.undefined_property"
	ErrOnlyInstances      = "runtime.only_instances"
	ErrNotCallable        = "runtime.not_callable"
	ErrArityMismatch      = "runtime.arity_mismatch"
	ErrSuperclassNotClass = "runtime.superclass_not_class"
	ErrUnaryMinusNil      = "runtime.unary_minus_nil"
	ErrOperandNumber      = "runtime.operand_number"
	ErrOperandsNumbers    = "runtime.operands_numbers"
	ErrPlusOperands       = "runtime.plus_operands"
)
