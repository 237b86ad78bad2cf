package bot

const startTemplate = "Hi <a href='tg://user?id=%d'>%s</a>! I'm your Music Bot.\n\n" +
	"Here's what I can do for you:\n" +
	"- Search and download music from YouTube and Spotify\n" +
	"- Preview songs with visual waveform display\n" +
	"- Show song lyrics\n" +
	"- Display trending songs\n" +
	"- Notify about new releases from your favorite artists\n" +
	"- Share songs via social media with one click\n" +
	"- Convert MP3 to MP4 and vice versa\n" +
	"- Recommend music by genre or by a song you like\n\n" +
	"Commands:\n" +
	"/search - Search for music\n" +
	"/lyrics - Find lyrics for a song\n" +
	"/trending - Show trending songs\n" +
	"/subscribe - Get notified of new releases\n" +
	"/convert - Convert between MP3 and MP4\n" +
	"/recommend - Get music recommendations\n" +
	"/theme - Personalize the bot's look\n" +
	"/help - Get help\n"

const helpText = "{emoji:music} *Music Bot Help* {emoji:music}\n\n" +
	"*Commands:*\n" +
	"/start - Start the bot\n" +
	"/search - Search for music on YouTube or Spotify\n" +
	"/lyrics - Find lyrics for a song\n" +
	"/trending - Show trending songs\n" +
	"/subscribe - Get notified of new releases\n" +
	"/convert - Convert between MP3 and MP4\n" +
	"/recommend - Get music recommendations\n" +
	"/theme - Change colors, emoji and font style\n" +
	"/history - Show your recent searches\n" +
	"/cancel - Cancel the current operation\n" +
	"/help - Show this help message\n\n" +
	"*How to use:*\n" +
	"1. Use /search to find music\n" +
	"2. Select the platform (YouTube/Spotify)\n" +
	"3. Enter your search query\n" +
	"4. Select a song from the results\n" +
	"5. Choose to preview the song or download it\n" +
	"6. Share the song to social media\n\n" +
	"*Preview Feature:*\n" +
	"- Get a 30-second audio preview of the song\n" +
	"- View the audio waveform visualization\n\n" +
	"*Lyrics Feature:*\n" +
	"- Use /lyrics and send 'Song Title - Artist Name'\n\n" +
	"*Artist Notifications:*\n" +
	"- Use /subscribe to manage your artist subscriptions\n\n" +
	"For conversion, use /convert and follow the instructions."

const (
	choosePlatformText  = "{emoji:search} Where would you like to search for music?"
	platformChosenText  = "You selected %s. Please enter your search query:"
	searchingText       = "{emoji:search} Searching for '%s' on %s..."
	noResultsText       = "No results found on %s. Please try again."
	selectSongText      = "{emoji:music} Select a song:"
	selectedOptionsText = "Selected: %s - %s\n\nWhat would you like to do?"
	selectionGoneText   = "{emoji:warning} That result is no longer available. Please /search again."
	searchFailedText    = "{emoji:error} Search failed. Please try again later."
	previewFollowUpText = "Enjoyed the preview? Download the full song!"

	lyricsPromptText    = "{emoji:lyrics} Please send me the song title and artist name in the format: 'Song Title - Artist Name'"
	lyricsSearchingText = "{emoji:search} Searching for lyrics of '%s' by %s..."
	lyricsNotFoundText  = "{emoji:error} Sorry, couldn't find lyrics for '%s' by %s.\nPlease try again with a different song or check your spelling."
	lyricsDisabledText  = "{emoji:warning} Lyrics search is not available right now."

	trendingFetchText = "{emoji:trending} Fetching trending songs from Spotify and YouTube..."

	convertMenuText    = "{emoji:convert} What conversion would you like to perform?"
	convertPromptText  = "Please send me the %s file you want to convert to %s."
	convertInvalidText = "Please send a valid file for conversion."
	convertTooBigText  = "{emoji:error} That file could not be downloaded. Telegram bots can only fetch files up to 20 MB."

	subscribeMenuText = "Artist Subscription Manager\n\n" +
		"Get notified when your favorite artists release new music!\n\n" +
		"What would you like to do?"
	subscribeArtistPrompt = "Please send me the artist name you want to subscribe to."
	subscribePlatformText = "Which platform would you like to subscribe to '%s' on?"
	subscribedText        = "{emoji:success} You are now subscribed to %s on %s. You'll be notified when they release new music!"
	alreadySubscribedText = "{emoji:info} You are already subscribed to %s on %s."
	artistNotFoundText    = "{emoji:error} Couldn't find '%s' on %s. Please check the name and try again."
	noSubscriptionsText   = "You don't have any subscriptions yet. Use /subscribe to add one."
	manageSubsText        = "Your subscriptions. Tap one to unsubscribe:"
	unsubscribedText      = "{emoji:success} Unsubscribed."
	subsDoneText          = "Subscription settings saved."
	notificationsOnText   = "Notifications are now ENABLED. You will receive alerts for new releases."
	notificationsOffText  = "Notifications are now DISABLED. You will not receive alerts for new releases."

	recommendMenuText     = "{emoji:recommend} Pick a genre or get recommendations based on a song you like:"
	recommendPromptText   = "Send me a song or artist and I'll find similar music."
	recommendNoResultText = "{emoji:warning} No recommendations found. Try another genre or song."

	themeMenuText    = "{emoji:theme} *Theme Settings*\n\nCurrent theme: *%s*\n\nPick a preset or customize:"
	themeAppliedText = "{emoji:success} Theme changed to *%s*."
	themeUpdatedText = "{emoji:success} Theme setting updated!"
	themeFailedText  = "{emoji:error} Sorry, there was a problem updating your theme setting."
	themeColorsText  = "{emoji:theme} *Color Customization*\n\nChoose which color to customize:\n\n" +
		"• Primary: `%s`\n• Background: `%s`\n• Accent: `%s`\n\n{emoji:info} Select an option:"
	themeColorChoiceText = "{emoji:theme} *Select %s Color*\n\nChoose from the following options:"
	themeEmojiText       = "{emoji:theme} *Emoji Set Selection*\n\n" +
		"Choose an emoji set to use throughout the bot interface:\n\n{emoji:info} Current set: *%s*"
	themeFontText = "{emoji:theme} *Font Style Selection*\n\n" +
		"Choose a font style to use throughout the bot interface:\n\n{emoji:info} Current style: *%s*\n\nPreview: %s"

	historyEmptyText  = "You haven't searched for anything yet."
	historyHeaderText = "{emoji:search} *Your recent searches:*\n\n"

	shareFollowUpText = "Share this song with your friends:"

	cancelledText    = "Operation cancelled. What would you like to do next?"
	unknownInputText = "I didn't understand that. Try using /help to see available commands."
	genericErrorText = "{emoji:error} Something went wrong. Please try again later."
)
