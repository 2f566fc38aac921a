package i18n

var messagesZH = map[string]string{
	// ========== Lexer ==========
	ErrUnexpectedChar:     "意外的字符: %c",
	ErrUnterminatedString: "未闭合的字符串。",

	// ========== Parser ==========
	ErrExpectedExpression:  "期望一个表达式。",
	ErrInvalidAssignTarget: "无效的赋值目标。",
	ErrTooManyArgs:         "实参数量不能超过 255 个。",
	ErrTooManyParams:       "形参数量不能超过 255 个。",

	// ========== Resolver ==========
	ErrAlreadyDeclared:   "当前作用域中已声明同名变量。",
	ErrReadInInitializer: "不能在局部变量自身的初始化表达式中读取它。",
	ErrReturnTopLevel:    "不能在顶层代码中使用 return。",
	ErrReturnFromInit:    "不能在初始化方法中返回值。",
	ErrThisOutsideClass:  "不能在类外使用 'this'。",
	ErrSuperOutsideClass: "不能在类外使用 'super'。",
	ErrSuperNoSuperclass: "不能在没有父类的类中使用 'super'。",
	ErrInheritSelf:       "类不能继承自身。",

	// ========== Runtime ==========
	ErrUndefinedVariable:  "未定义的变量 '%s'。",
	ErrUndefinedProperty:  "未定义的属性 '%s'。",
	ErrOnlyInstances:      "只有实例才有属性。",
	ErrNotCallable:        "只能调用函数和类。",
	ErrArityMismatch:      "期望 %d 个参数，实际传入 %d 个。",
	ErrSuperclassNotClass: "父类必须是一个类。",
	ErrUnaryMinusNil:      "不支持对 nil 取负。",
	ErrOperandNumber:      "操作数必须是数字。",
	ErrOperandsNumbers:    "操作数必须都是数字。",
	ErrPlusOperands:       "操作数必须是两个数字或两个字符串。",
}
