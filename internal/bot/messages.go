package bot

const (
	MsgHelp = "🏙️ Participium bot\n\n" +
		"/start - file a new report\n" +
		"/cancel - drop the report in progress\n" +
		"/link <code> - link this Telegram account to Participium\n" +
		"/unlink - unlink this Telegram account\n" +
		"/info - about Participium\n" +
		"/help - show this message\n\n" +
		"While filing a report, follow the prompts: location, title, description, category, 1 to 3 photos, anonymity and confirmation."

	MsgInfo = "ℹ️ Participium lets the citizens of Turin report problems in public spaces (broken lights, potholes, litter, barriers...) to the municipality.\n\n" +
		"Reports filed here show up on your Participium account exactly like those filed on the website. You need a registered account with your Telegram username linked to it."

	MsgUnknownCommand = "🤔 I don't know that command. Send /help to see what I can do."
	MsgNoSession      = "Send /start to file a new report, or /help to see all commands."

	MsgLinkUsage   = "🔗 Usage: /link <code>\n\nThe code has 6 digits and is shown in your Participium profile."
	MsgLinkInvalid = "❌ That code is not valid. Check it in your Participium profile and try again."
	MsgLinkExpired = "⌛ That code has expired. Generate a new one in your Participium profile."
	MsgLinkUsed    = "❌ That code has already been used. Generate a new one in your Participium profile."
	MsgLinkFailed  = "⚠️ I couldn't link your account right now. Please try again later."

	MsgUnlinkConfirm   = "🔓 Do you really want to unlink this Telegram account from Participium? You won't be able to file reports here until you link it again."
	MsgUnlinkYes       = "Yes, unlink"
	MsgUnlinkNo        = "No, keep it"
	MsgUnlinkKept      = "👍 Your account stays linked."
	MsgUnlinkNotLinked = "This Telegram account is not linked to any Participium account."
	MsgUnlinkFailed    = "⚠️ I couldn't unlink your account right now. Please try again later."
)
