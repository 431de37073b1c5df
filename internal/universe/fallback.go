package universe

// FallbackSymbols returns the static universe used when the exchange list
// is unreachable: Nifty 50, Nifty Next 50 and other major NSE listings.
func FallbackSymbols() []string {
	return []string{
		// Nifty 50
		"RELIANCE", "TCS", "HDFCBANK", "INFY", "HINDUNILVR", "ICICIBANK", "SBIN", "BHARTIARTL",
		"ITC", "KOTAKBANK", "LT", "ASIANPAINT", "AXISBANK", "MARUTI", "SUNPHARMA", "ULTRACEMCO",
		"TITAN", "WIPRO", "NESTLEIND", "POWERGRID", "NTPC", "BAJFINANCE", "HCLTECH", "COALINDIA",
		"ONGC", "TATASTEEL", "GRASIM", "ADANIENT", "JSWSTEEL", "INDUSINDBK", "BAJAJFINSV",
		"BAJAJ-AUTO", "CIPLA", "DRREDDY", "EICHERMOT", "GAIL", "HEROMOTOCO", "HINDALCO",
		"HINDPETRO", "IBULHSGFIN", "IOC", "M&M", "DIVISLAB", "TECHM", "TATACONSUM", "TATAMOTORS",
		"UPL", "VEDL", "APOLLOHOSP", "BRITANNIA",
		// Nifty Next 50
		"BANDHANBNK", "BERGEPAINT", "BOSCHLTD", "BPCL", "CANBK", "CHOLAFIN", "COLPAL", "DABUR",
		"DALBHARAT", "DEEPAKNTR", "FEDERALBNK", "GODREJCP", "HAVELLS", "HDFCAMC", "HDFCLIFE",
		"ICICIPRULI", "IDFCFIRSTB", "IGL", "INDIGO", "INDUSTOWER", "JINDALSTEL", "JUBLFOOD",
		"LALPATHLAB", "LUPIN", "MARICO", "MCDOWELL-N", "MFSL", "MRF", "MUTHOOTFIN", "NAUKRI",
		"NMDC", "PAGEIND", "PEL", "PETRONET", "PIDILITIND", "PNB", "RAMCOCEM", "RBLBANK",
		"RECLTD", "SAIL", "SHREECEM", "SIEMENS", "SRF", "SRTRANSFIN", "TORNTPHARM", "TRENT",
		"TVSMOTOR", "UBL", "VOLTAS", "ZEEL",
		// Additional major stocks
		"ABCAPITAL", "ABFRL", "ACC", "ADANIPORTS", "ADANIPOWER", "AJANTPHARM", "ALKEM", "AMBUJACEM",
		"APOLLOTYRE", "ASHOKLEY", "ASTRAL", "AUBANK", "AUROPHARMA", "BALKRISIND", "BALRAMCHIN",
		"BATAINDIA", "BEL", "BHARATFORG", "BIOCON", "CANFINHOME", "CHAMBLFERT", "COFORGE",
		"COROMANDEL", "CROMPTON", "CUB", "CUMMINSIND", "DIXON", "DLF", "ESCORTS", "EXIDEIND",
		"FORTIS", "GLENMARK", "GMRINFRA", "GODREJPROP", "GUJGASLTD", "HAL", "ICICIGI", "IDEA",
		"INDHOTEL", "IRCTC", "JKCEMENT", "JSWENERGY", "KAJARIACER", "LTTS", "MANAPPURAM",
		"MAXHEALTH", "MPHASIS", "NATIONALUM", "NAVINFLUOR", "OBEROIRLTY", "OFSS", "OIL",
		"PERSISTENT", "PFIZER", "PIIND", "POLYCAB", "PRESTIGE", "PVR", "SBILIFE", "SHRIRAMFIN",
		"SUNTV", "TATACHEM", "TATACOMM", "TATAELXSI", "TATAPOWER", "TORNTPOWER",
		"UNIONBANK", "WHIRLPOOL", "ZYDUSLIFE",
	}
}
