package chain

// ABI of the LuminaTicket contract, limited to the surface this service
// consumes. The events mapping getter returns the flattened event struct;
// decoding into named records happens in records.go and never leaks
// positional access past this package.
const ticketABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "eventId", "type": "uint256"},
			{"indexed": true, "name": "organizer", "type": "address"},
			{"indexed": false, "name": "title", "type": "string"}
		],
		"name": "EventCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "ticketId", "type": "uint256"},
			{"indexed": true, "name": "eventId", "type": "uint256"},
			{"indexed": true, "name": "buyer", "type": "address"},
			{"indexed": false, "name": "ticketType", "type": "uint256"}
		],
		"name": "TicketMinted",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "ticketId", "type": "uint256"},
			{"indexed": true, "name": "from", "type": "address"},
			{"indexed": true, "name": "to", "type": "address"}
		],
		"name": "TicketTransferred",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "ticketId", "type": "uint256"}
		],
		"name": "TicketUsed",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "organizer", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "RoyaltyWithdrawn",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "auctionId", "type": "uint256"},
			{"indexed": true, "name": "ticketId", "type": "uint256"},
			{"indexed": true, "name": "seller", "type": "address"},
			{"indexed": false, "name": "metadataHash", "type": "string"}
		],
		"name": "AuctionCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "auctionId", "type": "uint256"},
			{"indexed": true, "name": "bidder", "type": "address"},
			{"indexed": false, "name": "bidHash", "type": "string"}
		],
		"name": "BidRecorded",
		"type": "event"
	},
	{
		"inputs": [
			{"name": "_title", "type": "string"},
			{"name": "_description", "type": "string"},
			{"name": "_date", "type": "string"},
			{"name": "_location", "type": "string"},
			{"name": "_prices", "type": "uint256[]"},
			{"name": "_supplies", "type": "uint256[]"},
			{"name": "_imageUrl", "type": "string"},
			{"name": "_category", "type": "string"},
			{"name": "_royaltyPercentage", "type": "uint256"}
		],
		"name": "createEvent",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_eventId", "type": "uint256"},
			{"name": "_ticketType", "type": "uint256"},
			{"name": "_quantity", "type": "uint256"}
		],
		"name": "buyTickets",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_eventId", "type": "uint256"},
			{"name": "_ticketType", "type": "uint256"},
			{"name": "_quantity", "type": "uint256"},
			{"name": "_buyer", "type": "address"}
		],
		"name": "mintTickets",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_eventId", "type": "uint256"},
			{"name": "_ticketType", "type": "uint256"},
			{"name": "_recipients", "type": "address[]"}
		],
		"name": "airdropTickets",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_ticketId", "type": "uint256"},
			{"name": "_to", "type": "address"}
		],
		"name": "transferTicket",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_ticketId", "type": "uint256"}],
		"name": "useTicket",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "withdrawRoyalties",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "uint256"}],
		"name": "events",
		"outputs": [
			{"name": "eventId", "type": "uint256"},
			{"name": "title", "type": "string"},
			{"name": "description", "type": "string"},
			{"name": "date", "type": "string"},
			{"name": "location", "type": "string"},
			{"name": "priceETH", "type": "uint256"},
			{"name": "imageUrl", "type": "string"},
			{"name": "organizer", "type": "address"},
			{"name": "totalTickets", "type": "uint256"},
			{"name": "soldTickets", "type": "uint256"},
			{"name": "category", "type": "string"},
			{"name": "isActive", "type": "bool"},
			{"name": "royaltyPercentage", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "_ticketId", "type": "uint256"}],
		"name": "getTicket",
		"outputs": [
			{"name": "ticketId", "type": "uint256"},
			{"name": "eventId", "type": "uint256"},
			{"name": "ownerAddress", "type": "address"},
			{"name": "purchaseDate", "type": "uint256"},
			{"name": "qrCodeData", "type": "string"},
			{"name": "isUsed", "type": "bool"},
			{"name": "ticketType", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_owner", "type": "address"},
			{"name": "_eventId", "type": "uint256"}
		],
		"name": "getTicketsByOwner",
		"outputs": [{"name": "", "type": "uint256[]"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "nextEventId",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "address"}],
		"name": "organizerRoyalties",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_owner", "type": "address"},
			{"name": "_id", "type": "uint256"}
		],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_eventId", "type": "uint256"},
			{"name": "_ticketType", "type": "uint256"}
		],
		"name": "generateTokenId",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_ticketId", "type": "uint256"},
			{"name": "_metadataHash", "type": "string"}
		],
		"name": "createAuction",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_auctionId", "type": "uint256"},
			{"name": "_bidHash", "type": "string"}
		],
		"name": "recordBid",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_auctionId", "type": "uint256"}],
		"name": "getAuctionMetadataHash",
		"outputs": [{"name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "_auctionId", "type": "uint256"}],
		"name": "getAuctionBidHashes",
		"outputs": [{"name": "", "type": "string[]"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "_auctionId", "type": "uint256"}],
		"name": "getAuctionBidCount",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "_auctionId", "type": "uint256"}],
		"name": "auctionExists",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	}
]`
